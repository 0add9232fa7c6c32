package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udhaar-app/udhaar/internal/ledger"
	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/notification"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// SettlementService records manual and lump-sum payments as ledger rows.
type SettlementService struct {
	store    storage.Store
	netting  *NettingService
	notifier notification.Notifier
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, netting *NettingService, notifier notification.Notifier) *SettlementService {
	return &SettlementService{store: store, netting: netting, notifier: notifier}
}

// SettleInGroup records a payment between two members of one group as a
// single CashPaid row.
func (s *SettlementService) SettleInGroup(ctx context.Context, payerID, payeeID, groupID string, amount int64, currencyID string) (*models.SplitTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payerID == payeeID {
		return nil, ErrSameUser
	}
	for _, userID := range []string{payerID, payeeID} {
		if ok, err := s.store.IsMember(ctx, groupID, userID); err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		} else if !ok {
			return nil, fmt.Errorf("user %s in group %s: %w", userID, groupID, ErrNotAGroupMember)
		}
	}
	if _, err := s.store.GetCurrency(ctx, currencyID); err != nil {
		return nil, err
	}

	leg := &models.SplitTransaction{
		GroupID:    groupID,
		Amount:     amount,
		CurrencyID: currencyID,
		FromUser:   payerID,
		ToUser:     payeeID,
		Type:       models.TypeCashPaid,
		CreatedBy:  payerID,
	}
	if err := s.store.CreateSplits(ctx, []*models.SplitTransaction{leg}); err != nil {
		slog.Error("SettleInGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	countRows(1, string(models.TypeCashPaid))

	slog.Info("Settlement recorded",
		"group_id", groupID,
		"payer", payerID,
		"payee", payeeID,
		"amount", amount,
		"currency", currencyID,
	)

	s.netting.SimplifyBestEffort(ctx, payerID, payeeID)
	notification.NotifyBestEffort(ctx, s.notifier, payeeID,
		"Payment recorded", "A payment towards you was recorded")

	return leg, nil
}

// AutoSettle applies a lump-sum payment against the payer's existing
// per-group debts to the payee in one currency, largest debt first. Each
// candidate group settles min(remaining, debt); any remainder beyond the
// total existing debt is booked as an overpayment in the direct group for the
// pair, flipping who owes whom. All legs share one part transaction id and
// commit atomically.
func (s *SettlementService) AutoSettle(ctx context.Context, payerID, payeeID string, amount int64, currencyID string) ([]*models.SplitTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if payerID == payeeID {
		return nil, ErrSameUser
	}
	if _, err := s.store.GetCurrency(ctx, currencyID); err != nil {
		return nil, err
	}

	// From the payee's perspective a positive entry means the payer owes
	// the payee, which is exactly what the lump sum pays down.
	debts, err := s.store.OwedBetween(ctx, payeeID, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}
	allocations, leftover := ledger.PlanAutoSettle(currencyID, amount, debts)

	part := uuid.NewString()
	legs := make([]*models.SplitTransaction, 0, len(allocations)+1)
	for _, alloc := range allocations {
		// The cash moved payer -> payee, so each leg books the
		// counter-debt payee -> payer, offsetting the group's balance.
		legs = append(legs, &models.SplitTransaction{
			GroupID:         alloc.GroupID,
			Amount:          alloc.Amount,
			CurrencyID:      currencyID,
			FromUser:        payeeID,
			ToUser:          payerID,
			Type:            models.TypeCashPaid,
			PartTransaction: part,
			CreatedBy:       payerID,
		})
	}

	if leftover > 0 {
		directID, err := s.findOrCreateDirectGroup(ctx, payerID, payeeID)
		if err != nil {
			return nil, err
		}
		legs = append(legs, &models.SplitTransaction{
			GroupID:         directID,
			Amount:          leftover,
			CurrencyID:      currencyID,
			FromUser:        payeeID,
			ToUser:          payerID,
			Type:            models.TypeCashPaid,
			PartTransaction: part,
			CreatedBy:       payerID,
		})
	}

	if err := s.store.CreateSplits(ctx, legs); err != nil {
		slog.Error("AutoSettle failed", "payer", payerID, "payee", payeeID, "error", err)
		return nil, err
	}
	countRows(len(legs), string(models.TypeCashPaid))

	slog.Info("Auto-settle applied",
		"payer", payerID,
		"payee", payeeID,
		"amount", amount,
		"currency", currencyID,
		"groups_settled", len(allocations),
		"leftover", leftover,
	)

	s.netting.SimplifyBestEffort(ctx, payerID, payeeID)
	notification.NotifyBestEffort(ctx, s.notifier, payeeID,
		"Payment recorded", "A payment towards you was recorded")

	return legs, nil
}

// findOrCreateDirectGroup locates the direct group for the pair, creating it
// when missing or ambiguous.
func (s *SettlementService) findOrCreateDirectGroup(ctx context.Context, payerID, payeeID string) (string, error) {
	members := []string{payerID, payeeID}
	group, err := s.store.FindDirectGroup(ctx, members)
	if err == nil {
		return group.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("failed to find direct group: %w", err)
	}

	group = &models.Group{
		IsDirect:  true,
		CreatorID: payerID,
		Members:   members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return "", fmt.Errorf("failed to create direct group: %w", err)
	}
	slog.Info("Direct group created", "group_id", group.ID, "members", members)
	return group.ID, nil
}
