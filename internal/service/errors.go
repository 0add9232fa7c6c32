// Package service implements the ledger operations: expense allocation,
// settlement recording, cross-group netting and currency conversion.
//
// Every operation validates before writing, writes multi-row state in one
// store transaction, and runs netting and notifications best-effort after the
// primary write has committed. A best-effort failure is logged and swallowed;
// the committed write stands.
package service

import "errors"

var (
	// ErrInvalidAmount is returned for amounts that are not positive, and
	// for conversions whose result rounds below one minor unit.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfSplit is returned when an expense share targets its creator.
	ErrSelfSplit = errors.New("cannot split to self")

	// ErrNotAGroupMember is returned when a split target, payer or payee
	// is not a member of the group being booked against.
	ErrNotAGroupMember = errors.New("user is not a group member")

	// ErrSameUser is returned when an operation needs two distinct users.
	ErrSameUser = errors.New("payer and payee must differ")
)
