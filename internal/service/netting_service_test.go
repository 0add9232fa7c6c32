package service

import (
	"context"
	"testing"

	"github.com/udhaar-app/udhaar/internal/models"
)

func TestSimplify(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels opposing balances across groups", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "alice", "Alice", "+1555000001")
		seedUser(t, store, "bob", "Bob", "+1555000002")
		seedGroup(t, store, "g1", "alice", []string{"alice", "bob"})
		seedGroup(t, store, "g2", "alice", []string{"alice", "bob"})
		seedCurrency(t, store, "USD", 1.0, 2)
		seedDebt(t, store, "g1", "USD", "bob", "alice", 100)
		seedDebt(t, store, "g2", "USD", "alice", "bob", 60)

		before := totalNet(t, store, "alice", "bob", "USD")

		svc := NewNettingService(store)
		legs, err := svc.Simplify(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("Simplify failed: %v", err)
		}
		if len(legs) != 2 {
			t.Fatalf("Expected 2 mirrored legs, got %d", len(legs))
		}
		for _, leg := range legs {
			if leg.Type != models.TypeCrossGroupSettlement {
				t.Errorf("Expected CrossGroupSettlement, got %s", leg.Type)
			}
			if leg.Amount != 60 {
				t.Errorf("Expected settle amount 60, got %d", leg.Amount)
			}
			if leg.PartTransaction != legs[0].PartTransaction {
				t.Error("Expected mirrored legs to share one part transaction")
			}
		}
		if legs[0].GroupID != "g1" || legs[0].WithGroupID != "g2" {
			t.Errorf("Expected leg in g1 offsetting g2, got %+v", legs[0])
		}
		if legs[1].GroupID != "g2" || legs[1].WithGroupID != "g1" {
			t.Errorf("Expected mirror leg in g2 offsetting g1, got %+v", legs[1])
		}

		// The true net is conserved; the g2 debt is folded into g1.
		if after := totalNet(t, store, "alice", "bob", "USD"); after != before {
			t.Errorf("Net changed from %d to %d", before, after)
		}
		balances, err := store.OwedBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("OwedBetween failed: %v", err)
		}
		if len(balances) != 1 || balances[0].GroupID != "g1" || balances[0].Amount != 40 {
			t.Errorf("Expected single g1 balance of 40, got %+v", balances)
		}
	})

	t.Run("one-sided balances are left alone", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "alice", "Alice", "+1555000001")
		seedUser(t, store, "bob", "Bob", "+1555000002")
		seedGroup(t, store, "g1", "alice", []string{"alice", "bob"})
		seedGroup(t, store, "g2", "alice", []string{"alice", "bob"})
		seedCurrency(t, store, "USD", 1.0, 2)
		seedDebt(t, store, "g1", "USD", "bob", "alice", 100)
		seedDebt(t, store, "g2", "USD", "bob", "alice", 25)

		svc := NewNettingService(store)
		legs, err := svc.Simplify(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("Simplify failed: %v", err)
		}
		if len(legs) != 0 {
			t.Errorf("Expected no legs, got %d", len(legs))
		}
		balances, err := store.OwedBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("OwedBetween failed: %v", err)
		}
		if len(balances) != 2 {
			t.Errorf("Expected balances untouched, got %+v", balances)
		}
	})

	t.Run("currencies net independently", func(t *testing.T) {
		store := newTestStore(t)
		seedUser(t, store, "alice", "Alice", "+1555000001")
		seedUser(t, store, "bob", "Bob", "+1555000002")
		seedGroup(t, store, "g1", "alice", []string{"alice", "bob"})
		seedGroup(t, store, "g2", "alice", []string{"alice", "bob"})
		seedCurrency(t, store, "USD", 1.0, 2)
		seedCurrency(t, store, "INR", 83.0, 2)
		seedDebt(t, store, "g1", "USD", "bob", "alice", 100)
		seedDebt(t, store, "g2", "INR", "alice", "bob", 100)

		svc := NewNettingService(store)
		legs, err := svc.Simplify(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("Simplify failed: %v", err)
		}
		// Opposite signs but different currencies: nothing to cancel.
		if len(legs) != 0 {
			t.Errorf("Expected no legs across currencies, got %d", len(legs))
		}
	})
}
