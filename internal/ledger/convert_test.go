package ledger

import (
	"testing"

	"github.com/udhaar-app/udhaar/internal/models"
)

func TestConvertAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		from   models.Currency
		to     models.Currency
		want   int64
	}{
		{
			name:   "fewer decimals and higher rate",
			amount: 500, // 5.00 units
			from:   models.Currency{ID: "USD", Rate: 1.0, Decimals: 2},
			to:     models.Currency{ID: "JPY", Rate: 80.0, Decimals: 0},
			// 500 * 10^(0-2) / 1.0 * 80.0 = 400
			want: 400,
		},
		{
			name:   "same decimals, rate ratio only",
			amount: 1000,
			from:   models.Currency{ID: "USD", Rate: 1.0, Decimals: 2},
			to:     models.Currency{ID: "EUR", Rate: 0.5, Decimals: 2},
			want:   500,
		},
		{
			name:   "identity conversion",
			amount: 1234,
			from:   models.Currency{ID: "USD", Rate: 1.0, Decimals: 2},
			to:     models.Currency{ID: "USD", Rate: 1.0, Decimals: 2},
			want:   1234,
		},
		{
			name:   "result rounds to nearest minor unit",
			amount: 100,
			from:   models.Currency{ID: "USD", Rate: 3.0, Decimals: 2},
			to:     models.Currency{ID: "EUR", Rate: 1.0, Decimals: 2},
			// 100 / 3 = 33.33... rounds to 33
			want: 33,
		},
		{
			name:   "more decimals shifts up",
			amount: 7,
			from:   models.Currency{ID: "JPY", Rate: 80.0, Decimals: 0},
			to:     models.Currency{ID: "USD", Rate: 1.0, Decimals: 2},
			// 7 * 10^2 / 80 = 8.75 rounds to 9
			want: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertAmount(tt.amount, &tt.from, &tt.to)
			if got != tt.want {
				t.Errorf("ConvertAmount(%d, %s, %s) = %d, want %d",
					tt.amount, tt.from.ID, tt.to.ID, got, tt.want)
			}
		})
	}
}
