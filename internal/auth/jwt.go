package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// TokenType distinguishes what a token may be used for.
type TokenType string

const (
	// TokenAccess authorizes a signed-up user.
	TokenAccess TokenType = "access"

	// TokenSignup authorizes only completing signup for a verified
	// contact.
	TokenSignup TokenType = "signup"
)

// Claims represents the custom JWT claims for a session.
type Claims struct {
	UserID    string    `json:"user_id,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager with the given secret and token
// duration. secretKey should be a strong random string (e.g. 32 bytes).
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// GenerateAccess creates an access token for a signed-up user.
func (m *JWTManager) GenerateAccess(user *models.User) (string, error) {
	return m.sign(&Claims{
		UserID:    user.ID,
		Phone:     user.Phone,
		Email:     user.Email,
		TokenType: TokenAccess,
	})
}

// GenerateSignup creates a signup token for a verified contact whose account
// is not named yet.
func (m *JWTManager) GenerateSignup(user *models.User) (string, error) {
	return m.sign(&Claims{
		UserID:    user.ID,
		Phone:     user.Phone,
		Email:     user.Email,
		TokenType: TokenSignup,
	})
}

func (m *JWTManager) sign(claims *Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a JWT token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identify resolves a bearer token into a request identity. A missing or
// invalid token yields Unauthenticated; a valid token yields Authenticated
// once the account is named, PendingSignup before that.
func (m *JWTManager) Identify(ctx context.Context, store storage.Store, tokenString string) Identity {
	if tokenString == "" {
		return Identity{Kind: Unauthenticated}
	}

	claims, err := m.Validate(tokenString)
	if err != nil {
		return Identity{Kind: Unauthenticated}
	}

	user, err := store.GetUser(ctx, claims.UserID)
	if err != nil {
		return Identity{Kind: Unauthenticated}
	}
	if claims.TokenType == TokenSignup || !user.IsSignedUp() {
		return Identity{Kind: PendingSignup, Claims: claims}
	}
	return Identity{Kind: Authenticated, User: user}
}
