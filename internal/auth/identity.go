// Package auth provides identity resolution for the ledger: OTP issuance,
// JWT tokens, and the request identity passed to services.
package auth

import (
	"github.com/udhaar-app/udhaar/internal/models"
)

// Kind is the closed set of identity states a request can carry.
type Kind int

const (
	// Unauthenticated: no valid token was presented.
	Unauthenticated Kind = iota

	// PendingSignup: the OTP was verified but the account has no display
	// name yet; only signup may proceed.
	PendingSignup

	// Authenticated: a signed-up user.
	Authenticated
)

// Identity is the resolved identity of a request. Exactly one of Claims and
// User is meaningful, depending on Kind.
type Identity struct {
	Kind   Kind
	Claims *Claims      // set for PendingSignup
	User   *models.User // set for Authenticated
}

// AuthenticatedUser returns the signed-up user, if any.
func (i Identity) AuthenticatedUser() (*models.User, bool) {
	if i.Kind == Authenticated && i.User != nil {
		return i.User, true
	}
	return nil, false
}
