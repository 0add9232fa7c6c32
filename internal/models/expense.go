package models

// Expense represents money the creator spent on behalf of a group.
//
// An expense with a positive amount is immutable once its split legs are
// written; legs may only be replaced transactionally as a whole.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Title is the human-readable name for the expense.
	Title string

	// Category classifies the expense (e.g. "food", "travel").
	Category string

	// Note is an optional free-form description.
	Note string

	// ImageID references an uploaded receipt image, if any.
	ImageID string

	// Amount is the total in minor currency units.
	Amount int64

	// CurrencyID is the currency the expense was paid in.
	CurrencyID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// CreatedBy is the user who paid and recorded the expense.
	CreatedBy string

	// CreatedAt, UpdatedAt and TransactionAt are Unix timestamps.
	// TransactionAt is when the money actually changed hands, which may
	// predate CreatedAt for back-dated entries.
	CreatedAt     int64
	UpdatedAt     int64
	TransactionAt int64
}
