package service

import (
	"context"
	"errors"
	"testing"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

func TestConvert(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) storage.Store {
		store := newTestStore(t)
		seedUser(t, store, "alice", "Alice", "+1555000001")
		seedUser(t, store, "bob", "Bob", "+1555000002")
		seedGroup(t, store, "trip", "alice", []string{"alice", "bob"})
		seedCurrency(t, store, "USD", 1.0, 2)
		seedCurrency(t, store, "JPY", 80.0, 0)
		return store
	}

	t.Run("zero net is a no-op with zero writes", func(t *testing.T) {
		store := setup(t)
		svc := NewConversionService(store, NewNettingService(store))

		legs, err := svc.Convert(ctx, "alice", "bob", "trip", "USD", "JPY")
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if len(legs) != 0 {
			t.Errorf("Expected no legs, got %d", len(legs))
		}
		balances, err := store.OwedBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("OwedBetween failed: %v", err)
		}
		if len(balances) != 0 {
			t.Errorf("Expected no rows written, got %+v", balances)
		}
	})

	t.Run("re-denominates the outstanding balance", func(t *testing.T) {
		store := setup(t)
		// 5.00 USD at rate 1.0 becomes 400 yen at rate 80.0.
		seedDebt(t, store, "trip", "USD", "bob", "alice", 500)
		svc := NewConversionService(store, NewNettingService(store))

		legs, err := svc.Convert(ctx, "alice", "bob", "trip", "USD", "JPY")
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if len(legs) != 2 {
			t.Fatalf("Expected 2 legs, got %d", len(legs))
		}
		cancel, rebook := legs[0], legs[1]
		if cancel.CurrencyID != "USD" || cancel.Amount != 500 || cancel.FromUser != "alice" || cancel.ToUser != "bob" {
			t.Errorf("Unexpected cancel leg %+v", cancel)
		}
		if rebook.CurrencyID != "JPY" || rebook.Amount != 400 || rebook.FromUser != "bob" || rebook.ToUser != "alice" {
			t.Errorf("Unexpected re-book leg %+v", rebook)
		}
		if cancel.PartTransaction == "" || cancel.PartTransaction != rebook.PartTransaction {
			t.Error("Expected both legs to share one part transaction")
		}
		for _, leg := range legs {
			if leg.Type != models.TypeCurrencyConversion {
				t.Errorf("Expected CurrencyConversion, got %s", leg.Type)
			}
		}

		if net := totalNet(t, store, "alice", "bob", "USD"); net != 0 {
			t.Errorf("Expected USD balance cancelled, got %d", net)
		}
		if net := totalNet(t, store, "alice", "bob", "JPY"); net != 400 {
			t.Errorf("Expected bob to owe 400 JPY, got %d", net)
		}
	})

	t.Run("negative net keeps the same ower", func(t *testing.T) {
		store := setup(t)
		seedDebt(t, store, "trip", "USD", "alice", "bob", 500)
		svc := NewConversionService(store, NewNettingService(store))

		legs, err := svc.Convert(ctx, "alice", "bob", "trip", "USD", "JPY")
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if len(legs) != 2 {
			t.Fatalf("Expected 2 legs, got %d", len(legs))
		}
		if net := totalNet(t, store, "alice", "bob", "JPY"); net != -400 {
			t.Errorf("Expected alice to owe 400 JPY, got %d", net)
		}
	})

	t.Run("rejects a conversion that rounds to nothing", func(t *testing.T) {
		store := setup(t)
		seedCurrency(t, store, "XAU", 1.0, 0)
		seedDebt(t, store, "trip", "USD", "bob", "alice", 1)
		svc := NewConversionService(store, NewNettingService(store))

		_, err := svc.Convert(ctx, "alice", "bob", "trip", "USD", "XAU")
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		store := setup(t)
		seedDebt(t, store, "trip", "USD", "bob", "alice", 100)
		svc := NewConversionService(store, NewNettingService(store))

		if _, err := svc.Convert(ctx, "alice", "bob", "trip", "USD", "XXX"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
