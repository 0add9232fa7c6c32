// Package ledger implements the pure debt algorithms: per-group balance
// bookkeeping, the cross-group netting plan, greedy auto-settle allocation
// and currency conversion math.
//
// Nothing in this package touches storage; functions take balances already
// read from committed rows and return the rows a caller should write. This
// keeps the algorithms deterministic and directly testable.
package ledger

// Balance is the net signed debt between two users within one group and
// currency. The sign convention follows the balance query: for a pair
// (a, b), a positive amount means b owes a, a negative amount means a owes b.
type Balance struct {
	GroupID    string
	CurrencyID string
	Amount     int64
}

// bucketByCurrency partitions balances per currency, preserving the order in
// which currencies and entries first appear. The netting plan is sensitive to
// this order, so callers must hand in balances in a deterministic order.
func bucketByCurrency(balances []Balance) ([]string, map[string][]Balance) {
	var order []string
	buckets := make(map[string][]Balance)
	for _, b := range balances {
		if _, ok := buckets[b.CurrencyID]; !ok {
			order = append(order, b.CurrencyID)
		}
		buckets[b.CurrencyID] = append(buckets[b.CurrencyID], b)
	}
	return order, buckets
}
