package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udhaar-app/udhaar/internal/ledger"
	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

// ConversionService converts a group-scoped net balance from one currency to
// another at current rates.
type ConversionService struct {
	store   storage.Store
	netting *NettingService
}

// NewConversionService creates a new ConversionService.
func NewConversionService(store storage.Store, netting *NettingService) *ConversionService {
	return &ConversionService{store: store, netting: netting}
}

// Convert re-denominates the net balance between two users within one group
// from one currency to another. Rates and decimals are read at call time; no
// historical rate is locked in.
//
// A zero net balance is a no-op success. Otherwise two CurrencyConversion
// legs sharing one part transaction id commit atomically: a full-amount leg
// in the source currency that cancels the outstanding balance, and a leg in
// the target currency for the converted amount that keeps the same user
// owing.
func (s *ConversionService) Convert(ctx context.Context, userA, userB, groupID, fromCurrencyID, toCurrencyID string) ([]*models.SplitTransaction, error) {
	net, err := s.store.OwedInGroup(ctx, userA, userB, groupID, fromCurrencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read group balance: %w", err)
	}
	if net == 0 {
		return nil, nil
	}

	fromCurrency, err := s.store.GetCurrency(ctx, fromCurrencyID)
	if err != nil {
		return nil, err
	}
	toCurrency, err := s.store.GetCurrency(ctx, toCurrencyID)
	if err != nil {
		return nil, err
	}

	// ower/owed per the sign convention: positive net means userB owes
	// userA.
	ower, owed := userB, userA
	amount := net
	if net < 0 {
		ower, owed = userA, userB
		amount = -net
	}

	toAmount := ledger.ConvertAmount(amount, fromCurrency, toCurrency)
	if toAmount <= 0 {
		return nil, fmt.Errorf("converted amount rounds below one minor unit: %w", ErrInvalidAmount)
	}

	part := uuid.NewString()
	legs := []*models.SplitTransaction{
		{
			// Cancels the outstanding source-currency balance.
			GroupID:         groupID,
			Amount:          amount,
			CurrencyID:      fromCurrencyID,
			FromUser:        owed,
			ToUser:          ower,
			Type:            models.TypeCurrencyConversion,
			PartTransaction: part,
			CreatedBy:       userA,
		},
		{
			// Re-books it in the target currency, same ower.
			GroupID:         groupID,
			Amount:          toAmount,
			CurrencyID:      toCurrencyID,
			FromUser:        ower,
			ToUser:          owed,
			Type:            models.TypeCurrencyConversion,
			PartTransaction: part,
			CreatedBy:       userA,
		},
	}

	if err := s.store.CreateSplits(ctx, legs); err != nil {
		slog.Error("Convert failed", "group_id", groupID, "error", err)
		return nil, err
	}
	countRows(len(legs), string(models.TypeCurrencyConversion))

	slog.Info("Currency converted",
		"group_id", groupID,
		"from", fromCurrencyID,
		"to", toCurrencyID,
		"from_amount", amount,
		"to_amount", toAmount,
	)

	s.netting.SimplifyBestEffort(ctx, userA, userB)

	return legs, nil
}
