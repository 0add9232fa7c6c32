// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/udhaar-app/udhaar/internal/ledger"
	"github.com/udhaar-app/udhaar/internal/models"
)

var (
	// ErrNotFound is returned when a requested entity does not exist. For
	// direct-group lookup it also covers the ambiguous case of multiple
	// candidate groups, since the caller reacts the same way to both:
	// create a fresh direct group.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on unique-constraint conflicts such as
	// duplicate memberships or duplicate contact identifiers.
	ErrAlreadyExists = errors.New("already exists")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Every multi-row write (an expense with its legs, a batch of settlement or
// netting legs) is atomic: either all rows commit or none do. The ledger is
// append-only; no method edits or deletes a committed split transaction.
type Store interface {
	// CreateUser persists a new user, populating ID and CreatedAt if unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByPhone retrieves a user by phone number.
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// SetUserName completes signup by setting the display name.
	SetUserName(ctx context.Context, id, name string) (*models.User, error)

	// SetNotificationToken stores the push token for a user's device.
	SetNotificationToken(ctx context.Context, id, token string) error

	// CreateGroup persists a group and its initial memberships atomically.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group, including its member list.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupsForUser lists every group the user is a member of.
	GetGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMember adds a user to a group.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// IsMember reports whether the user belongs to the group.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// FindDirectGroup returns the unique direct group whose membership set
	// equals exactly members. Returns ErrNotFound when no such group
	// exists, or when more than one candidate exists.
	FindDirectGroup(ctx context.Context, members []string) (*models.Group, error)

	// GetCurrency retrieves a currency by its code.
	GetCurrency(ctx context.Context, id string) (*models.Currency, error)

	// UpsertCurrency inserts or replaces a currency; the external rate
	// refresh job writes through this.
	UpsertCurrency(ctx context.Context, currency *models.Currency) error

	// ListCurrencies returns all known currencies.
	ListCurrencies(ctx context.Context) ([]*models.Currency, error)

	// CreateExpense persists an expense together with its split legs in
	// one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense, legs []*models.SplitTransaction) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesByGroup returns a page of a group's expenses, newest
	// first.
	ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*models.Expense, error)

	// CreateSplits appends a batch of split transactions in one
	// transaction. Used for settlements, netting legs and conversions.
	CreateSplits(ctx context.Context, legs []*models.SplitTransaction) error

	// ListSplitsByExpense returns the legs booked for an expense.
	ListSplitsByExpense(ctx context.Context, expenseID string) ([]*models.SplitTransaction, error)

	// ListSplitsByPart returns every leg sharing a part transaction id.
	ListSplitsByPart(ctx context.Context, partID string) ([]*models.SplitTransaction, error)

	// OwedBetween returns, per group and currency, the signed net balance
	// between two users computed from raw rows: positive means userB owes
	// userA. Pairs whose net is exactly zero are omitted. Entries are
	// ordered by (currency, group) ascending so callers that depend on
	// iteration order are deterministic.
	OwedBetween(ctx context.Context, userA, userB string) ([]ledger.Balance, error)

	// OwedInGroup returns the signed net between two users restricted to
	// one group and currency; positive means userB owes userA.
	OwedInGroup(ctx context.Context, userA, userB, groupID, currencyID string) (int64, error)

	// OwedInGroupTotal returns the user's net position across all
	// counterparties within a group, per currency.
	OwedInGroupTotal(ctx context.Context, userID, groupID string) (map[string]int64, error)

	// Close releases any resources held by the store.
	Close() error
}
