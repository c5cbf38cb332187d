package handlers

import (
	"net/http"
	"sync/atomic"
)

// Metrics keeps coarse in-process counters for the summary endpoint. They
// reset on restart; durable analytics live elsewhere.
type Metrics struct {
	batches        atomic.Int64
	blocked        atomic.Int64
	slotsSucceeded atomic.Int64
	slotsFailed    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordBatch(succeeded, failed int) {
	m.batches.Add(1)
	m.slotsSucceeded.Add(int64(succeeded))
	m.slotsFailed.Add(int64(failed))
}

func (m *Metrics) RecordBlocked() {
	m.blocked.Add(1)
}

func (a *App) MetricsSummary(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]int64{
		"batches":         a.Metrics.batches.Load(),
		"blocked":         a.Metrics.blocked.Load(),
		"slots_succeeded": a.Metrics.slotsSucceeded.Load(),
		"slots_failed":    a.Metrics.slotsFailed.Load(),
	})
}
