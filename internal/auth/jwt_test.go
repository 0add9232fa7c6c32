package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/udhaar-app/udhaar/internal/models"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)
	user := &models.User{ID: "u1", Name: "Alice", Phone: "+1555000001"}

	t.Run("access token round-trips", func(t *testing.T) {
		token, err := manager.GenerateAccess(user)
		if err != nil {
			t.Fatalf("GenerateAccess failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != "u1" || claims.TokenType != TokenAccess {
			t.Errorf("Unexpected claims %+v", claims)
		}
	})

	t.Run("signup token carries its type", func(t *testing.T) {
		token, err := manager.GenerateSignup(user)
		if err != nil {
			t.Fatalf("GenerateSignup failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.TokenType != TokenSignup {
			t.Errorf("Expected signup token, got %s", claims.TokenType)
		}
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewJWTManager("other-secret-key", time.Hour)
		token, err := other.GenerateAccess(user)
		if err != nil {
			t.Fatalf("GenerateAccess failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key", -time.Minute)
		token, err := expired.GenerateAccess(user)
		if err != nil {
			t.Fatalf("GenerateAccess failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
