package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

var (
	ErrInvalidOTP = errors.New("invalid or expired one-time code")
)

const otpDigits = 6

// OTPService issues and verifies one-time codes for a contact identifier
// (phone or email). Codes live in an in-process expiring map, hashed at
// rest; delivery of the code (SMS, email) is an external concern.
//
// Verifying a code finds or creates the user for the contact: this is the
// moment a user row first exists, still unnamed until signup completes.
type OTPService struct {
	store storage.Store
	jwt   *JWTManager
	codes *ExpiringMap[string, []byte]
}

// NewOTPService creates an OTPService whose codes expire after ttl.
func NewOTPService(store storage.Store, jwt *JWTManager, ttl time.Duration) *OTPService {
	return &OTPService{
		store: store,
		jwt:   jwt,
		codes: NewExpiringMap[string, []byte](ttl),
	}
}

// Issue generates a fresh code for the contact and returns it for delivery.
// Any previous code for the contact is replaced.
func (s *OTPService) Issue(ctx context.Context, contact string) (string, error) {
	code, err := randomCode(otpDigits)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	s.codes.Set(normalizeContact(contact), hash)

	slog.Info("OTP issued", "contact", contact)
	return code, nil
}

// Verify checks the code for the contact and returns a token plus resolved
// identity. The code is single-use. The user row is created on first
// verification; the token is a signup token until the account is named.
func (s *OTPService) Verify(ctx context.Context, contact, code string) (string, Identity, error) {
	key := normalizeContact(contact)
	hash, ok := s.codes.Get(key)
	if !ok {
		return "", Identity{Kind: Unauthenticated}, ErrInvalidOTP
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(code)); err != nil {
		return "", Identity{Kind: Unauthenticated}, ErrInvalidOTP
	}
	s.codes.Delete(key)

	user, err := s.findOrCreateUser(ctx, contact)
	if err != nil {
		return "", Identity{Kind: Unauthenticated}, err
	}

	if user.IsSignedUp() {
		token, err := s.jwt.GenerateAccess(user)
		if err != nil {
			return "", Identity{Kind: Unauthenticated}, err
		}
		return token, Identity{Kind: Authenticated, User: user}, nil
	}

	token, err := s.jwt.GenerateSignup(user)
	if err != nil {
		return "", Identity{Kind: Unauthenticated}, err
	}
	claims := &Claims{UserID: user.ID, Phone: user.Phone, Email: user.Email, TokenType: TokenSignup}
	return token, Identity{Kind: PendingSignup, Claims: claims}, nil
}

// CompleteSignup names a pending account, turning its identity into an
// authenticated one.
func (s *OTPService) CompleteSignup(ctx context.Context, identity Identity, name string) (string, *models.User, error) {
	if identity.Kind != PendingSignup || identity.Claims == nil {
		return "", nil, ErrInvalidToken
	}
	if strings.TrimSpace(name) == "" {
		return "", nil, errors.New("name must not be empty")
	}

	user, err := s.store.SetUserName(ctx, identity.Claims.UserID, strings.TrimSpace(name))
	if err != nil {
		return "", nil, err
	}

	token, err := s.jwt.GenerateAccess(user)
	if err != nil {
		return "", nil, err
	}
	slog.Info("Signup completed", "user_id", user.ID)
	return token, user, nil
}

func (s *OTPService) findOrCreateUser(ctx context.Context, contact string) (*models.User, error) {
	var user *models.User
	var err error
	if isEmail(contact) {
		user, err = s.store.GetUserByEmail(ctx, contact)
	} else {
		user, err = s.store.GetUserByPhone(ctx, contact)
	}
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user = &models.User{}
	if isEmail(contact) {
		user.Email = contact
	} else {
		user.Phone = contact
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("User created on first verification", "user_id", user.ID)
	return user, nil
}

func isEmail(contact string) bool {
	return strings.Contains(contact, "@")
}

func normalizeContact(contact string) string {
	return strings.ToLower(strings.TrimSpace(contact))
}

func randomCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
