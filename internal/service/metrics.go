package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udhaar_ledger_rows_written_total",
		Help: "Split transaction rows committed, by transaction type.",
	}, []string{"type"})

	nettingPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udhaar_netting_passes_total",
		Help: "Cross-group netting passes, by outcome.",
	}, []string{"outcome"})
)

func countRows(legs int, transactionType string) {
	ledgerRowsWritten.WithLabelValues(transactionType).Add(float64(legs))
}
