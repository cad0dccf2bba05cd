// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK           = "ok"
	outcomeError        = "error"
	outcomeUnauthorized = "unauthorized"
)

// Metrics holds the hook counters. They are process-wide and registered once.
type Metrics struct {
	Callbacks       *prometheus.CounterVec
	UnlockCallbacks *prometheus.CounterVec
	Pokes           *prometheus.CounterVec
	FeeUpdates      *prometheus.CounterVec
	Donations       *prometheus.CounterVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// DefaultMetrics returns the process-wide hook metrics
func DefaultMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			Callbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dexhooks_hook_callbacks_total",
					Help: "Hook lifecycle callbacks by callback and outcome",
				},
				[]string{"callback", "outcome"},
			),
			UnlockCallbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dexhooks_unlock_callbacks_total",
					Help: "Unlock callbacks received by hooks, by outcome",
				},
				[]string{"outcome"},
			),
			Pokes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dexhooks_pokes_total",
					Help: "Dynamic fee refreshes by outcome",
				},
				[]string{"outcome"},
			),
			FeeUpdates: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dexhooks_fee_updates_total",
					Help: "LP fee values chosen by hooks, by kind",
				},
				[]string{"kind"},
			),
			Donations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dexhooks_donations_total",
					Help: "Captured swap amounts donated to liquidity providers, by mode",
				},
				[]string{"mode"},
			),
		}
	})
	return metricsInstance
}
