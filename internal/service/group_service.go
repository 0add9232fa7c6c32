package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/notification"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// MemberBalance is one group member together with the caller's net position
// against them in that group, per currency. Positive means the member owes
// the caller.
type MemberBalance struct {
	UserID string
	Owed   map[string]int64
}

// GroupService manages groups and membership.
type GroupService struct {
	store    storage.Store
	notifier notification.Notifier
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, notifier notification.Notifier) *GroupService {
	return &GroupService{store: store, notifier: notifier}
}

// Create creates a named group with the creator as its first member.
func (s *GroupService) Create(ctx context.Context, creatorID, name string) (*models.Group, error) {
	group := &models.Group{
		Name:      name,
		CreatorID: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}
	slog.Info("Group created", "group_id", group.ID, "name", name)
	return group, nil
}

// AddMemberByPhone adds the user registered under phone to a group. Only an
// existing member may add others.
func (s *GroupService) AddMemberByPhone(ctx context.Context, actorID, groupID, phone string) error {
	if ok, err := s.store.IsMember(ctx, groupID, actorID); err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	} else if !ok {
		return fmt.Errorf("actor %s in group %s: %w", actorID, groupID, ErrNotAGroupMember)
	}

	user, err := s.store.GetUserByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if err := s.store.AddGroupMember(ctx, groupID, user.ID); err != nil {
		return err
	}

	slog.Info("Member added", "group_id", groupID, "user_id", user.ID)
	notification.NotifyBestEffort(ctx, s.notifier, user.ID,
		"Added to group", "You were added to a group")
	return nil
}

// Get returns a group the caller belongs to.
func (s *GroupService) Get(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if ok, err := s.store.IsMember(ctx, groupID, callerID); err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("caller %s in group %s: %w", callerID, groupID, ErrNotAGroupMember)
	}
	return group, nil
}

// ListForUser returns every group the user is a member of.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.GetGroupsForUser(ctx, userID)
}

// MemberBalances returns, for every member of the group, the caller's net
// position against them within the group, recomputed from raw rows.
func (s *GroupService) MemberBalances(ctx context.Context, callerID, groupID string) ([]MemberBalance, error) {
	group, err := s.Get(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]MemberBalance, 0, len(group.Members))
	for _, memberID := range group.Members {
		mb := MemberBalance{UserID: memberID, Owed: map[string]int64{}}
		if memberID != callerID {
			pairs, err := s.store.OwedBetween(ctx, callerID, memberID)
			if err != nil {
				return nil, err
			}
			for _, b := range pairs {
				if b.GroupID == groupID {
					mb.Owed[b.CurrencyID] += b.Amount
				}
			}
		}
		balances = append(balances, mb)
	}
	return balances, nil
}
