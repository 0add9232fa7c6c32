package models

// Currency represents a currency with a point-in-time exchange rate.
//
// Rates are refreshed periodically by an external job; the ledger reads them
// at the moment of conversion and keeps no historical rate per transaction.
type Currency struct {
	// ID is the ISO-style currency code (e.g. "USD", "INR").
	ID string

	// DisplayName is the human-readable name (e.g. "US Dollar").
	DisplayName string

	// Symbol is the display symbol (e.g. "$").
	Symbol string

	// Rate is the exchange rate relative to the fixed base currency.
	Rate float64

	// Decimals is the number of minor-unit digits (e.g. 2 for cents).
	Decimals int64
}
