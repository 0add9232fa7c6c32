package service

import (
	"context"
	"errors"
	"testing"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
)

func newExpenseService(store storage.Store, notifier *recordingNotifier) *ExpenseService {
	return NewExpenseService(store, NewNettingService(store), notifier, NopReceiptStore{})
}

func TestExpenseCreate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedUser(t, store, "alice", "Alice", "+1555000001")
	seedUser(t, store, "bob", "Bob", "+1555000002")
	seedUser(t, store, "carol", "Carol", "+1555000003")
	seedUser(t, store, "dave", "Dave", "+1555000004")
	seedGroup(t, store, "trip", "alice", []string{"alice", "bob", "carol"})
	seedCurrency(t, store, "USD", 1.0, 2)

	t.Run("books one leg per share", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := newExpenseService(store, notifier)

		expense, err := svc.Create(ctx, "alice", ExpenseInput{
			Title:      "Dinner",
			Amount:     100,
			CurrencyID: "USD",
			GroupID:    "trip",
			Shares:     []Share{{UserID: "bob", Amount: 60}, {UserID: "carol", Amount: 40}},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		legs, err := store.ListSplitsByExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("ListSplitsByExpense failed: %v", err)
		}
		if len(legs) != 2 {
			t.Fatalf("Expected 2 legs, got %d", len(legs))
		}
		want := map[string]int64{"bob": 60, "carol": 40}
		for _, leg := range legs {
			if leg.Type != models.TypeExpenseSplit {
				t.Errorf("Expected ExpenseSplit leg, got %s", leg.Type)
			}
			if leg.ToUser != "alice" {
				t.Errorf("Expected leg towards alice, got %s", leg.ToUser)
			}
			if want[leg.FromUser] != leg.Amount {
				t.Errorf("Leg %s: got amount %d, want %d", leg.FromUser, leg.Amount, want[leg.FromUser])
			}
		}

		if net := totalNet(t, store, "alice", "bob", "USD"); net != 60 {
			t.Errorf("Expected bob to owe alice 60, got %d", net)
		}
		if got := notifier.notified(); len(got) != 2 {
			t.Errorf("Expected 2 notifications, got %v", got)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc := newExpenseService(store, &recordingNotifier{})
		_, err := svc.Create(ctx, "alice", ExpenseInput{
			Amount: 0, CurrencyID: "USD", GroupID: "trip",
			Shares: []Share{{UserID: "bob", Amount: 10}},
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects share targeting the creator", func(t *testing.T) {
		svc := newExpenseService(store, &recordingNotifier{})
		_, err := svc.Create(ctx, "alice", ExpenseInput{
			Amount: 100, CurrencyID: "USD", GroupID: "trip",
			Shares: []Share{{UserID: "alice", Amount: 50}, {UserID: "bob", Amount: 50}},
		})
		if !errors.Is(err, ErrSelfSplit) {
			t.Errorf("Expected ErrSelfSplit, got %v", err)
		}
	})

	t.Run("silently drops non-positive shares", func(t *testing.T) {
		svc := newExpenseService(store, &recordingNotifier{})
		expense, err := svc.Create(ctx, "alice", ExpenseInput{
			Title:  "Taxi",
			Amount: 60, CurrencyID: "USD", GroupID: "trip",
			Shares: []Share{{UserID: "bob", Amount: 60}, {UserID: "carol", Amount: 0}},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		legs, err := store.ListSplitsByExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("ListSplitsByExpense failed: %v", err)
		}
		if len(legs) != 1 || legs[0].FromUser != "bob" {
			t.Errorf("Expected single leg from bob, got %+v", legs)
		}
	})

	t.Run("rejects a share from a non-member", func(t *testing.T) {
		svc := newExpenseService(store, &recordingNotifier{})
		_, err := svc.Create(ctx, "alice", ExpenseInput{
			Amount: 100, CurrencyID: "USD", GroupID: "trip",
			Shares: []Share{{UserID: "dave", Amount: 100}},
		})
		if !errors.Is(err, ErrNotAGroupMember) {
			t.Errorf("Expected ErrNotAGroupMember, got %v", err)
		}
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		svc := newExpenseService(store, &recordingNotifier{})
		_, err := svc.Create(ctx, "alice", ExpenseInput{
			Amount: 100, CurrencyID: "XXX", GroupID: "trip",
			Shares: []Share{{UserID: "bob", Amount: 100}},
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
