package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udhaar-app/udhaar/internal/ledger"
	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// CreateExpense persists an expense together with its split legs in one
// transaction. A failure on any leg rolls back the expense and every leg
// written before it.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, legs []*models.SplitTransaction) error {
	now := time.Now().Unix()
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}
	if expense.TransactionAt == 0 {
		expense.TransactionAt = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, title, category, note, image_id, amount, currency_id,
		                       group_id, created_by, created_at, updated_at, transaction_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Title, expense.Category, expense.Note, expense.ImageID,
		expense.Amount, expense.CurrencyID, expense.GroupID, expense.CreatedBy,
		expense.CreatedAt, expense.UpdatedAt, expense.TransactionAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, leg := range legs {
		leg.ExpenseID = expense.ID
		if err := insertSplit(ctx, tx, leg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, category, note, image_id, amount, currency_id,
		        group_id, created_by, created_at, updated_at, transaction_at
		 FROM expenses WHERE id = ?`,
		id,
	).Scan(&expense.ID, &expense.Title, &expense.Category, &expense.Note, &expense.ImageID,
		&expense.Amount, &expense.CurrencyID, &expense.GroupID, &expense.CreatedBy,
		&expense.CreatedAt, &expense.UpdatedAt, &expense.TransactionAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByGroup returns a page of a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, note, image_id, amount, currency_id,
		        group_id, created_by, created_at, updated_at, transaction_at
		 FROM expenses WHERE group_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Note, &e.ImageID,
			&e.Amount, &e.CurrencyID, &e.GroupID, &e.CreatedBy,
			&e.CreatedAt, &e.UpdatedAt, &e.TransactionAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// CreateSplits appends a batch of split transactions in one transaction.
func (s *SQLiteStore) CreateSplits(ctx context.Context, legs []*models.SplitTransaction) error {
	if len(legs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, leg := range legs {
		if err := insertSplit(ctx, tx, leg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSplit(ctx context.Context, tx *sql.Tx, leg *models.SplitTransaction) error {
	if leg.ID == "" {
		leg.ID = uuid.New().String()
	}
	if leg.CreatedAt == 0 {
		leg.CreatedAt = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO split_transactions (id, expense_id, group_id, amount, currency_id,
		                                 from_user, to_user, transaction_type, part_transaction,
		                                 with_group_id, created_by, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		leg.ID, nullable(leg.ExpenseID), leg.GroupID, leg.Amount, leg.CurrencyID,
		leg.FromUser, leg.ToUser, string(leg.Type), nullable(leg.PartTransaction),
		nullable(leg.WithGroupID), leg.CreatedBy, leg.Note, leg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split transaction: %w", err)
	}
	return nil
}

// ListSplitsByExpense returns the legs booked for an expense.
func (s *SQLiteStore) ListSplitsByExpense(ctx context.Context, expenseID string) ([]*models.SplitTransaction, error) {
	return s.listSplits(ctx, "expense_id = ?", expenseID)
}

// ListSplitsByPart returns every leg sharing a part transaction id.
func (s *SQLiteStore) ListSplitsByPart(ctx context.Context, partID string) ([]*models.SplitTransaction, error) {
	return s.listSplits(ctx, "part_transaction = ?", partID)
}

func (s *SQLiteStore) listSplits(ctx context.Context, where string, arg any) ([]*models.SplitTransaction, error) {
	query := fmt.Sprintf(
		`SELECT id, expense_id, group_id, amount, currency_id, from_user, to_user,
		        transaction_type, part_transaction, with_group_id, created_by, note, created_at
		 FROM split_transactions WHERE %s ORDER BY created_at, id`, where)

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list split transactions: %w", err)
	}
	defer rows.Close()

	var legs []*models.SplitTransaction
	for rows.Next() {
		leg := &models.SplitTransaction{}
		var expenseID, part, withGroup sql.NullString
		var ttype string
		if err := rows.Scan(&leg.ID, &expenseID, &leg.GroupID, &leg.Amount, &leg.CurrencyID,
			&leg.FromUser, &leg.ToUser, &ttype, &part, &withGroup,
			&leg.CreatedBy, &leg.Note, &leg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split transaction: %w", err)
		}
		leg.ExpenseID = expenseID.String
		leg.PartTransaction = part.String
		leg.WithGroupID = withGroup.String
		leg.Type = models.TransactionType(ttype)
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split transactions: %w", err)
	}
	return legs, nil
}

// OwedBetween returns, per group and currency, the signed net balance between
// two users: positive means userB owes userA. Computed from raw rows; zero
// nets are dropped. Ordering by (currency, group) keeps the netting engine's
// pairing order, and thus the audit trail, deterministic.
func (s *SQLiteStore) OwedBetween(ctx context.Context, userA, userB string) ([]ledger.Balance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, currency_id,
		        SUM(CASE WHEN from_user = ?2 THEN amount ELSE -amount END) AS net
		 FROM split_transactions
		 WHERE (from_user = ?1 AND to_user = ?2) OR (from_user = ?2 AND to_user = ?1)
		 GROUP BY group_id, currency_id
		 HAVING net != 0
		 ORDER BY currency_id, group_id`,
		userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []ledger.Balance
	for rows.Next() {
		var b ledger.Balance
		if err := rows.Scan(&b.GroupID, &b.CurrencyID, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

// OwedInGroup returns the signed net between two users restricted to one
// group and currency; positive means userB owes userA.
func (s *SQLiteStore) OwedInGroup(ctx context.Context, userA, userB, groupID, currencyID string) (int64, error) {
	var net sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(CASE WHEN from_user = ?2 THEN amount ELSE -amount END)
		 FROM split_transactions
		 WHERE ((from_user = ?1 AND to_user = ?2) OR (from_user = ?2 AND to_user = ?1))
		   AND group_id = ?3 AND currency_id = ?4`,
		userA, userB, groupID, currencyID,
	).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to query group balance: %w", err)
	}
	return net.Int64, nil
}

// OwedInGroupTotal returns the user's net position across all counterparties
// within a group, per currency. Positive means the user is owed money.
func (s *SQLiteStore) OwedInGroupTotal(ctx context.Context, userID, groupID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT currency_id,
		        SUM(CASE WHEN to_user = ?1 THEN amount ELSE -amount END) AS net
		 FROM split_transactions
		 WHERE (from_user = ?1 OR to_user = ?1) AND group_id = ?2
		 GROUP BY currency_id`,
		userID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query group totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var currencyID string
		var net int64
		if err := rows.Scan(&currencyID, &net); err != nil {
			return nil, fmt.Errorf("failed to scan group total: %w", err)
		}
		totals[currencyID] = net
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group totals: %w", err)
	}
	return totals, nil
}
