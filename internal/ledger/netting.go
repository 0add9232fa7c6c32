package ledger

import (
	"github.com/udhaar-app/udhaar/internal/models"
)

// PlanNetting computes the cross-group netting rows for a user pair.
//
// The same two users can owe each other money in several groups and
// currencies at once. Per currency, a debt in one group can be cancelled
// against an oppositely-signed debt in another group without changing the
// true total either user owes overall.
//
// balances must come from the balance query for (userA, userB): positive
// entries mean userB owes userA in that group. Per currency bucket:
//
//  1. Partition entries into positives and negatives.
//  2. Walk positives in order; each positive repeatedly draws from the
//     negatives, continuing from wherever the previous positive left off.
//     The negative cursor is shared across positives, never reset.
//  3. Each (positive, negative) pairing settles min(remaining) and emits two
//     offsetting rows with a fresh shared part-transaction id: one in the
//     positive's group (userA -> userB, back-referencing the negative's
//     group) and a mirror in the negative's group.
//
// The plan never changes the aggregate net for a currency, but it is not a
// no-op on the ledger: planning twice over uncommitted state would emit rows
// twice. Callers run it best-effort after a committed balance change.
func PlanNetting(userA, userB string, balances []Balance, newID func() string) []*models.SplitTransaction {
	var rows []*models.SplitTransaction

	currencies, buckets := bucketByCurrency(balances)
	for _, currencyID := range currencies {
		var positives, negatives []Balance
		for _, b := range buckets[currencyID] {
			switch {
			case b.Amount > 0:
				positives = append(positives, b)
			case b.Amount < 0:
				negatives = append(negatives, b)
			}
		}

		ni := 0 // negative cursor, shared across positives
		for _, pos := range positives {
			remaining := pos.Amount
			for remaining > 0 && ni < len(negatives) {
				neg := &negatives[ni]
				owed := -neg.Amount
				if owed == 0 {
					ni++
					continue
				}

				settle := remaining
				if owed < settle {
					settle = owed
				}

				part := newID()
				rows = append(rows,
					&models.SplitTransaction{
						ID:              newID(),
						GroupID:         pos.GroupID,
						Amount:          settle,
						CurrencyID:      currencyID,
						FromUser:        userA,
						ToUser:          userB,
						Type:            models.TypeCrossGroupSettlement,
						PartTransaction: part,
						WithGroupID:     neg.GroupID,
						CreatedBy:       userA,
					},
					&models.SplitTransaction{
						ID:              newID(),
						GroupID:         neg.GroupID,
						Amount:          settle,
						CurrencyID:      currencyID,
						FromUser:        userB,
						ToUser:          userA,
						Type:            models.TypeCrossGroupSettlement,
						PartTransaction: part,
						WithGroupID:     pos.GroupID,
						CreatedBy:       userA,
					},
				)

				remaining -= settle
				neg.Amount += settle
				if neg.Amount == 0 {
					ni++
				}
			}
		}
	}

	return rows
}
