package models

// TransactionType classifies how a split transaction came to exist.
type TransactionType string

const (
	// TypeExpenseSplit is one participant's share of an expense.
	TypeExpenseSplit TransactionType = "ExpenseSplit"

	// TypeCashPaid is a manual or auto-settled payment.
	TypeCashPaid TransactionType = "CashPaid"

	// TypeCrossGroupSettlement is one leg of a cross-group netting pass.
	TypeCrossGroupSettlement TransactionType = "CrossGroupSettlement"

	// TypeCurrencyConversion is one leg of a currency conversion.
	TypeCurrencyConversion TransactionType = "CurrencyConversion"
)

// SplitTransaction is the core ledger row: one directed, positive-amount debt
// from FromUser to ToUser, booked against a group and currency.
//
// Rows are append-only. Reversing a debt means inserting a new row in the
// opposite direction, never negating the amount or swapping the columns of an
// existing row. The net balance between two users is always the signed sum
// over their raw rows.
type SplitTransaction struct {
	// ID is the unique identifier for the row (UUID format).
	ID string

	// ExpenseID links an expense-derived leg to its expense. Empty for
	// payments, settlements and conversions.
	ExpenseID string

	// GroupID is the group the leg is booked against.
	GroupID string

	// Amount is the debt in minor currency units. Always positive.
	Amount int64

	// CurrencyID is the currency of the amount.
	CurrencyID string

	// FromUser owes; ToUser is owed.
	FromUser string
	ToUser   string

	// Type classifies the row.
	Type TransactionType

	// PartTransaction is a correlation id shared by every leg of one
	// logical multi-leg operation. Legs sharing it are created atomically
	// and are displayed and audited together, never reversed individually.
	PartTransaction string

	// WithGroupID, on CrossGroupSettlement legs, back-references the other
	// group whose debt this leg offsets.
	WithGroupID string

	// CreatedBy is the user whose operation produced the row.
	CreatedBy string

	// Note is an optional free-form description.
	Note string

	// CreatedAt is the Unix timestamp when the row was inserted.
	CreatedAt int64
}
