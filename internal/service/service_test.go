package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/udhaar-app/udhaar/internal/models"
	"github.com/udhaar-app/udhaar/internal/storage"
	"github.com/udhaar-app/udhaar/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "udhaar-service-test-*")
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

func seedUser(t *testing.T, store storage.Store, id, name, phone string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &models.User{ID: id, Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

func seedGroup(t *testing.T, store storage.Store, id, creator string, members []string) {
	t.Helper()
	err := store.CreateGroup(context.Background(), &models.Group{
		ID:        id,
		Name:      id,
		CreatorID: creator,
		Members:   members,
	})
	if err != nil {
		t.Fatalf("Failed to seed group %s: %v", id, err)
	}
}

func seedCurrency(t *testing.T, store storage.Store, id string, rate float64, decimals int64) {
	t.Helper()
	err := store.UpsertCurrency(context.Background(), &models.Currency{
		ID: id, DisplayName: id, Symbol: id, Rate: rate, Decimals: decimals,
	})
	if err != nil {
		t.Fatalf("Failed to seed currency %s: %v", id, err)
	}
}

// seedDebt books a single ExpenseSplit row so that from owes to.
func seedDebt(t *testing.T, store storage.Store, groupID, currencyID, from, to string, amount int64) {
	t.Helper()
	err := store.CreateSplits(context.Background(), []*models.SplitTransaction{{
		GroupID:    groupID,
		Amount:     amount,
		CurrencyID: currencyID,
		FromUser:   from,
		ToUser:     to,
		Type:       models.TypeExpenseSplit,
		CreatedBy:  to,
	}})
	if err != nil {
		t.Fatalf("Failed to seed debt in %s: %v", groupID, err)
	}
}

// totalNet sums owed-between entries for one currency across all groups.
// Positive means userB owes userA.
func totalNet(t *testing.T, store storage.Store, userA, userB, currencyID string) int64 {
	t.Helper()
	balances, err := store.OwedBetween(context.Background(), userA, userB)
	if err != nil {
		t.Fatalf("OwedBetween failed: %v", err)
	}
	var total int64
	for _, b := range balances {
		if b.CurrencyID == currencyID {
			total += b.Amount
		}
	}
	return total
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, userID)
	return nil
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}
