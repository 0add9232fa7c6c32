package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, phone, email, notification_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, nullable(user.Phone), nullable(user.Email),
		user.NotificationToken, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with this contact exists: %w", storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByPhone retrieves a user by phone number.
func (s *SQLiteStore) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "phone", phone)
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(
		`SELECT id, name, phone, email, notification_token, created_at
		 FROM users WHERE %s = ?`, column)

	user := &models.User{}
	var phone, email sql.NullString
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Name, &phone, &email, &user.NotificationToken, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s=%s: %w", column, value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Phone = phone.String
	user.Email = email.String
	return user, nil
}

// SetUserName completes signup by setting the display name.
func (s *SQLiteStore) SetUserName(ctx context.Context, id, name string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to set user name: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return s.GetUser(ctx, id)
}

// SetNotificationToken stores the push token for a user's device.
func (s *SQLiteStore) SetNotificationToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET notification_token = ? WHERE id = ?", token, id)
	if err != nil {
		return fmt.Errorf("failed to set notification token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// nullable converts an empty string to NULL so UNIQUE columns admit many
// users without a phone or email.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
