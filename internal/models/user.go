package models

// User represents an account.
//
// A user row is created the first time an OTP for their phone or email is
// verified; at that point Name is still empty. Signup completes the account
// by setting the display name.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name. Empty until signup completes.
	Name string

	// Phone is an optional contact identifier (unique when set).
	Phone string

	// Email is an optional contact identifier (unique when set).
	Email string

	// NotificationToken is the push token for this user's device, if any.
	NotificationToken string

	// CreatedAt is the Unix timestamp when the user row was created.
	CreatedAt int64
}

// IsSignedUp reports whether the user has completed signup.
func (u *User) IsSignedUp() bool {
	return u.Name != ""
}
