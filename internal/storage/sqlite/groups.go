package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// CreateGroup persists a group and its initial memberships in one
// transaction. The creator is always added as a member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	isDirect := 0
	if group.IsDirect {
		isDirect = 1
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, is_direct, creator_id, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, isDirect, group.CreatorID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	members := group.Members
	if !contains(members, group.CreatorID) {
		members = append(members, group.CreatorID)
	}
	for _, userID := range members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)",
			group.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", err)
		}
	}
	group.Members = members

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group, including its member list.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	var isDirect int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, is_direct, creator_id, created_at FROM groups WHERE id = ?",
		id,
	).Scan(&group.ID, &group.Name, &isDirect, &group.CreatorID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.IsDirect = isDirect == 1

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_memberships WHERE group_id = ? ORDER BY user_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return group, nil
}

// GetGroupsForUser lists every group the user is a member of.
func (s *SQLiteStore) GetGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.is_direct, g.creator_id, g.created_at
		 FROM groups g
		 JOIN group_memberships gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var isDirect int
		if err := rows.Scan(&group.ID, &group.Name, &isDirect, &group.CreatorID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.IsDirect = isDirect == 1
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// AddGroupMember adds a user to a group.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership: %w", storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the group.
func (s *SQLiteStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_memberships WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// FindDirectGroup returns the unique direct group whose membership set equals
// exactly members. Zero candidates and multiple candidates both surface as
// ErrNotFound; multiple candidates additionally log a warning, since the
// caller reacts identically by creating a fresh direct group.
func (s *SQLiteStore) FindDirectGroup(ctx context.Context, members []string) (*models.Group, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("direct group: %w", storage.ErrNotFound)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(members)), ", ")
	query := fmt.Sprintf(
		`SELECT g.id
		 FROM groups g
		 JOIN group_memberships gm ON gm.group_id = g.id
		 WHERE g.is_direct = 1
		 GROUP BY g.id
		 HAVING COUNT(*) = ?
		    AND SUM(CASE WHEN gm.user_id IN (%s) THEN 1 ELSE 0 END) = ?`,
		placeholders)

	args := make([]any, 0, len(members)+2)
	args = append(args, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	args = append(args, len(members))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find direct group: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan direct group: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate direct groups: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("direct group: %w", storage.ErrNotFound)
	case 1:
		return s.GetGroup(ctx, ids[0])
	default:
		slog.Warn("ambiguous direct group lookup", "members", members, "candidates", len(ids))
		return nil, fmt.Errorf("direct group ambiguous: %w", storage.ErrNotFound)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
