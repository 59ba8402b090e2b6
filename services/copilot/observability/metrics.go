// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the copilot service.
//
// # Description
//
// Metrics cover the three decision paths that matter operationally:
//   - plan generation (count and latency by provenance)
//   - provider failures (by reason, since fallback hides them from callers)
//   - retention sweeps (runs and purged concerns)
//   - reflections served
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Call InitMetrics() once
// at startup; the Record helpers are no-ops until then, so library code
// can record unconditionally and tests need no metrics setup.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all copilot metrics.
const metricsNamespace = "copilot"

// CopilotMetrics holds all Prometheus metrics for the copilot service.
//
// # Fields
//
//   - PlansTotal: Counter of generated plans by provenance tag.
//   - PlanDurationSeconds: Histogram of end-to-end plan latency by provenance.
//   - ProviderFailuresTotal: Counter of provider failures by reason.
//   - ReflectionsTotal: Counter of reflections served.
//   - RetentionSweepsTotal: Counter of sweep invocations.
//   - ConcernsPurgedTotal: Counter of concerns removed by sweeps.
type CopilotMetrics struct {
	// PlansTotal counts generated plans.
	// Labels: provenance ("deterministic-fallback" or "llm:<model>")
	PlansTotal *prometheus.CounterVec

	// PlanDurationSeconds measures end-to-end plan generation latency.
	// Labels: provenance
	PlanDurationSeconds *prometheus.HistogramVec

	// ProviderFailuresTotal counts delegated-generation failures.
	// Labels: reason (call_failed, invalid_response, empty_actions, ...)
	ProviderFailuresTotal *prometheus.CounterVec

	// ReflectionsTotal counts reflection reports served.
	// Labels: verdict (no_outcome, no_assumptions, compared)
	ReflectionsTotal *prometheus.CounterVec

	// RetentionSweepsTotal counts retention sweep runs.
	RetentionSweepsTotal prometheus.Counter

	// ConcernsPurgedTotal counts concerns removed by retention sweeps.
	ConcernsPurgedTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance, initialized by InitMetrics().
// Nil until then; the Record helpers tolerate that.
var DefaultMetrics *CopilotMetrics

// initOnce guards against double registration with the default registry.
var initOnce sync.Once

// InitMetrics initializes and registers the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics with the default registry.
// Safe to call more than once; only the first call registers.
//
// # Outputs
//
//   - *CopilotMetrics: The initialized singleton.
func InitMetrics() *CopilotMetrics {
	initOnce.Do(func() {
		DefaultMetrics = &CopilotMetrics{
			PlansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "plans_total",
				Help:      "Total mitigation plans generated, by provenance tag.",
			}, []string{"provenance"}),

			PlanDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "plan_duration_seconds",
				Help:      "End-to-end mitigation plan latency in seconds.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			}, []string{"provenance"}),

			ProviderFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "provider_failures_total",
				Help:      "Delegated generation failures recovered by fallback, by reason.",
			}, []string{"reason"}),

			ReflectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "reflections_total",
				Help:      "Total reflection reports served, by verdict.",
			}, []string{"verdict"}),

			RetentionSweepsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "retention_sweeps_total",
				Help:      "Total retention sweep runs.",
			}),

			ConcernsPurgedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "concerns_purged_total",
				Help:      "Total premortem concerns removed by retention sweeps.",
			}),
		}
	})
	return DefaultMetrics
}

// =============================================================================
// Record Helpers
// =============================================================================

// RecordPlan records a generated plan and its latency.
func RecordPlan(provenance string, duration time.Duration) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.PlansTotal.WithLabelValues(provenance).Inc()
	DefaultMetrics.PlanDurationSeconds.WithLabelValues(provenance).Observe(duration.Seconds())
}

// RecordProviderFailure records a delegated-generation failure by reason.
func RecordProviderFailure(reason string) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.ProviderFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordReflection records a reflection report served, by verdict.
func RecordReflection(verdict string) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.ReflectionsTotal.WithLabelValues(verdict).Inc()
}

// RecordSweep records a retention sweep run and the concerns it purged.
func RecordSweep(purged int) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.RetentionSweepsTotal.Inc()
	DefaultMetrics.ConcernsPurgedTotal.Add(float64(purged))
}
