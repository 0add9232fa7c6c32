package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/udhaar-app/udhaar/internal/storage"
	"github.com/udhaar-app/udhaar/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "udhaar-auth-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOTPFlow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	jwt := NewJWTManager("test-secret-key", time.Hour)
	svc := NewOTPService(store, jwt, time.Minute)

	t.Run("first verification creates a pending account", func(t *testing.T) {
		code, err := svc.Issue(ctx, "+1555000001")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if len(code) != otpDigits {
			t.Fatalf("Expected %d-digit code, got %q", otpDigits, code)
		}

		token, identity, err := svc.Verify(ctx, "+1555000001", code)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if identity.Kind != PendingSignup {
			t.Fatalf("Expected PendingSignup, got %v", identity.Kind)
		}
		claims, err := jwt.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.TokenType != TokenSignup {
			t.Errorf("Expected signup token, got %s", claims.TokenType)
		}

		user, err := store.GetUserByPhone(ctx, "+1555000001")
		if err != nil {
			t.Fatalf("GetUserByPhone failed: %v", err)
		}
		if user.IsSignedUp() {
			t.Error("User must stay unnamed until signup completes")
		}
	})

	t.Run("codes are single-use", func(t *testing.T) {
		code, err := svc.Issue(ctx, "+1555000002")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if _, _, err := svc.Verify(ctx, "+1555000002", code); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if _, _, err := svc.Verify(ctx, "+1555000002", code); !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP on reuse, got %v", err)
		}
	})

	t.Run("wrong code is rejected and kept", func(t *testing.T) {
		code, err := svc.Issue(ctx, "+1555000003")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		if _, _, err := svc.Verify(ctx, "+1555000003", wrong); !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP, got %v", err)
		}
		if _, _, err := svc.Verify(ctx, "+1555000003", code); err != nil {
			t.Errorf("Expected the right code to still work, got %v", err)
		}
	})

	t.Run("expired codes are rejected", func(t *testing.T) {
		short := NewOTPService(store, jwt, 10*time.Millisecond)
		code, err := short.Issue(ctx, "+1555000004")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		time.Sleep(25 * time.Millisecond)
		if _, _, err := short.Verify(ctx, "+1555000004", code); !errors.Is(err, ErrInvalidOTP) {
			t.Errorf("Expected ErrInvalidOTP, got %v", err)
		}
	})

	t.Run("signup completes with an access token", func(t *testing.T) {
		code, err := svc.Issue(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		_, identity, err := svc.Verify(ctx, "alice@example.com", code)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}

		token, user, err := svc.CompleteSignup(ctx, identity, "Alice")
		if err != nil {
			t.Fatalf("CompleteSignup failed: %v", err)
		}
		if user.Name != "Alice" || user.Email != "alice@example.com" {
			t.Errorf("Unexpected user %+v", user)
		}
		claims, err := jwt.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.TokenType != TokenAccess {
			t.Errorf("Expected access token, got %s", claims.TokenType)
		}

		// A later verification goes straight to an authenticated identity.
		code, err = svc.Issue(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		_, identity, err = svc.Verify(ctx, "alice@example.com", code)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if identity.Kind != Authenticated {
			t.Errorf("Expected Authenticated, got %v", identity.Kind)
		}
	})

	t.Run("signup requires a pending identity", func(t *testing.T) {
		if _, _, err := svc.CompleteSignup(ctx, Identity{Kind: Unauthenticated}, "Mallory"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
