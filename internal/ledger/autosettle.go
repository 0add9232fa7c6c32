package ledger

import "sort"

// Allocation is one group's slice of a lump-sum payment.
type Allocation struct {
	GroupID string
	Amount  int64
}

// PlanAutoSettle allocates a lump-sum payment from a payer to a payee across
// the payer's existing per-group debts in one currency.
//
// debts must be the balance entries from the payee's perspective, i.e. a
// positive entry means the payer owes the payee in that group. Entries in
// other currencies or with non-positive amounts are ignored. Debts are
// settled largest first; each candidate group takes min(remaining, debt)
// until the amount is exhausted or candidates run out. The returned leftover
// is whatever exceeds the total existing debt; callers record it in the
// direct group for the pair, where it flips the direction of who owes whom.
//
// The descending first-found order is part of the contract: the audit trail
// depends on it, so it is a stable sort on amount with group id as the tie
// break.
func PlanAutoSettle(currencyID string, amount int64, debts []Balance) (allocations []Allocation, leftover int64) {
	candidates := make([]Balance, 0, len(debts))
	for _, d := range debts {
		if d.CurrencyID == currencyID && d.Amount > 0 {
			candidates = append(candidates, d)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Amount != candidates[j].Amount {
			return candidates[i].Amount > candidates[j].Amount
		}
		return candidates[i].GroupID < candidates[j].GroupID
	})

	remaining := amount
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		settle := remaining
		if c.Amount < settle {
			settle = c.Amount
		}
		allocations = append(allocations, Allocation{GroupID: c.GroupID, Amount: settle})
		remaining -= settle
	}

	return allocations, remaining
}
