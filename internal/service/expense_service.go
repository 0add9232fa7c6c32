package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/notification"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// Share is one participant's share of an expense.
type Share struct {
	UserID string
	Amount int64
}

// ReceiptStore promotes uploaded receipt images to permanent storage. It is
// an external collaborator; Promote runs only after the expense transaction
// has committed.
type ReceiptStore interface {
	Promote(ctx context.Context, imageID string) error
}

// NopReceiptStore is a ReceiptStore for deployments without object storage.
type NopReceiptStore struct{}

// Promote does nothing.
func (NopReceiptStore) Promote(ctx context.Context, imageID string) error { return nil }

// ExpenseInput carries the caller-provided fields of a new expense.
type ExpenseInput struct {
	Title         string
	Category      string
	Note          string
	ImageID       string
	Amount        int64
	CurrencyID    string
	GroupID       string
	Shares        []Share
	TransactionAt int64
}

// ExpenseService creates expenses and their split legs.
type ExpenseService struct {
	store    storage.Store
	netting  *NettingService
	notifier notification.Notifier
	receipts ReceiptStore
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, netting *NettingService, notifier notification.Notifier, receipts ReceiptStore) *ExpenseService {
	return &ExpenseService{store: store, netting: netting, notifier: notifier, receipts: receipts}
}

// Create validates and books an expense: one expense row plus one
// ExpenseSplit leg per positive share, all in one transaction.
//
// Shares with a non-positive amount are dropped silently before insertion; a
// share targeting the creator is an error. Every remaining share's user, and
// the creator, must be a member of the group. After the commit the receipt is
// promoted and a best-effort netting pass runs per distinct participant.
func (s *ExpenseService) Create(ctx context.Context, creatorID string, in ExpenseInput) (*models.Expense, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	for _, share := range in.Shares {
		if share.UserID == creatorID {
			return nil, ErrSelfSplit
		}
	}

	shares := make([]Share, 0, len(in.Shares))
	for _, share := range in.Shares {
		if share.Amount > 0 {
			shares = append(shares, share)
		}
	}

	if ok, err := s.store.IsMember(ctx, in.GroupID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("creator %s in group %s: %w", creatorID, in.GroupID, ErrNotAGroupMember)
	}
	for _, share := range shares {
		if ok, err := s.store.IsMember(ctx, in.GroupID, share.UserID); err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		} else if !ok {
			return nil, fmt.Errorf("user %s in group %s: %w", share.UserID, in.GroupID, ErrNotAGroupMember)
		}
	}
	if _, err := s.store.GetCurrency(ctx, in.CurrencyID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Title:         in.Title,
		Category:      in.Category,
		Note:          in.Note,
		ImageID:       in.ImageID,
		Amount:        in.Amount,
		CurrencyID:    in.CurrencyID,
		GroupID:       in.GroupID,
		CreatedBy:     creatorID,
		TransactionAt: in.TransactionAt,
	}
	legs := make([]*models.SplitTransaction, 0, len(shares))
	for _, share := range shares {
		legs = append(legs, &models.SplitTransaction{
			GroupID:    in.GroupID,
			Amount:     share.Amount,
			CurrencyID: in.CurrencyID,
			FromUser:   share.UserID,
			ToUser:     creatorID,
			Type:       models.TypeExpenseSplit,
			CreatedBy:  creatorID,
		})
	}

	if err := s.store.CreateExpense(ctx, expense, legs); err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}
	countRows(len(legs), string(models.TypeExpenseSplit))

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", in.GroupID,
		"amount", in.Amount,
		"currency", in.CurrencyID,
		"legs", len(legs),
	)

	if in.ImageID != "" {
		if err := s.receipts.Promote(ctx, in.ImageID); err != nil {
			slog.Warn("Receipt promotion failed", "image_id", in.ImageID, "error", err)
		}
	}

	for _, share := range shares {
		s.netting.SimplifyBestEffort(ctx, creatorID, share.UserID)
		notification.NotifyBestEffort(ctx, s.notifier, share.UserID,
			"New expense", fmt.Sprintf("You were added to %q", in.Title))
	}

	return expense, nil
}

// Get retrieves an expense by ID.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ListByGroup returns a page of a group's expenses, newest first.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]*models.Expense, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListExpensesByGroup(ctx, groupID, limit, offset)
}

// Splits returns the legs booked for an expense.
func (s *ExpenseService) Splits(ctx context.Context, expenseID string) ([]*models.SplitTransaction, error) {
	return s.store.ListSplitsByExpense(ctx, expenseID)
}
