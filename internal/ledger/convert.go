package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/udhaar-app/udhaar/internal/models"
)

// ConvertAmount converts an amount in from's minor units into to's minor
// units at the currencies' current rates:
//
//	to_amount = from_amount * 10^(to_decimals - from_decimals) / from_rate * to_rate
//
// The shift accounts for the currencies' differing minor-unit precision, the
// rate ratio for their value against the shared base. The result is rounded
// to the nearest whole minor unit.
func ConvertAmount(amount int64, from, to *models.Currency) int64 {
	result := decimal.NewFromInt(amount).
		Shift(int32(to.Decimals - from.Decimals)).
		Div(decimal.NewFromFloat(from.Rate)).
		Mul(decimal.NewFromFloat(to.Rate))
	return result.Round(0).IntPart()
}
