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

// NettingService runs the cross-group netting engine for user pairs.
type NettingService struct {
	store storage.Store
}

// NewNettingService creates a new NettingService with the given storage
// backend.
func NewNettingService(store storage.Store) *NettingService {
	return &NettingService{store: store}
}

// Simplify cancels a user pair's debt across groups, per currency, emitting
// mirrored CrossGroupSettlement legs. All legs are written in one
// transaction. The pair's true net per currency is unchanged; only how it is
// scattered across groups shrinks.
func (s *NettingService) Simplify(ctx context.Context, userA, userB string) ([]*models.SplitTransaction, error) {
	balances, err := s.store.OwedBetween(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}

	legs := ledger.PlanNetting(userA, userB, balances, uuid.NewString)
	if len(legs) == 0 {
		return nil, nil
	}

	if err := s.store.CreateSplits(ctx, legs); err != nil {
		return nil, fmt.Errorf("failed to write netting legs: %w", err)
	}

	countRows(len(legs), string(models.TypeCrossGroupSettlement))
	slog.Info("Netting pass applied",
		"user_a", userA,
		"user_b", userB,
		"legs", len(legs),
	)
	return legs, nil
}

// SimplifyBestEffort runs Simplify after a committed balance change and
// swallows failures. The primary write has already durably succeeded, so a
// netting failure must not surface to the caller; no retry queue exists.
func (s *NettingService) SimplifyBestEffort(ctx context.Context, userA, userB string) {
	if _, err := s.Simplify(ctx, userA, userB); err != nil {
		nettingPasses.WithLabelValues("failed").Inc()
		slog.Warn("Best-effort netting pass failed",
			"user_a", userA,
			"user_b", userB,
			"error", err,
		)
		return
	}
	nettingPasses.WithLabelValues("ok").Inc()
}
