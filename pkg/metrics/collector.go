/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics exposes binding activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bindings"

// Reconcile outcomes.
const (
	OutcomeAdded   = "added"
	OutcomeChanged = "changed"
	OutcomeRemoved = "removed"
)

// Collector records poll, reconcile, thing and HTTP client metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	pollDuration    *prometheus.HistogramVec
	pollFailures    *prometheus.CounterVec
	reconcileEvents *prometheus.CounterVec
	trackedEntities *prometheus.GaugeVec
	statusUpdates   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector registers the binding metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		pollDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of bridge poll cycles",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"bridge"}),
		pollFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Bridge poll cycles that ended in an error",
		}, []string{"bridge", "detail"}),
		reconcileEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_events_total",
			Help:      "Entities added, changed or removed by reconciliation",
		}, []string{"bridge", "kind", "outcome"}),
		trackedEntities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_entities",
			Help:      "Entities currently known to a bridge",
		}, []string{"bridge", "kind"}),
		statusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thing_status_updates_total",
			Help:      "Thing status updates by binding and resulting status",
		}, []string{"binding", "status"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP requests by client, method and status code",
		}, []string{"client", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outgoing HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "method"}),
	}
}

// ObservePoll records one poll cycle. detail names the offline detail of a
// failed cycle.
func (c *Collector) ObservePoll(bridge string, d time.Duration, detail string, failed bool) {
	if c == nil {
		return
	}

	c.pollDuration.WithLabelValues(bridge).Observe(d.Seconds())

	if failed {
		c.pollFailures.WithLabelValues(bridge, detail).Inc()
	}
}

// Reconciled counts one reconcile outcome for an entity kind.
func (c *Collector) Reconciled(bridge, kind, outcome string) {
	if c == nil {
		return
	}

	c.reconcileEvents.WithLabelValues(bridge, kind, outcome).Inc()
}

// SetTracked sets the number of entities a bridge currently knows.
func (c *Collector) SetTracked(bridge, kind string, n int) {
	if c == nil {
		return
	}

	c.trackedEntities.WithLabelValues(bridge, kind).Set(float64(n))
}

// StatusUpdated counts a thing status update.
func (c *Collector) StatusUpdated(binding, status string) {
	if c == nil {
		return
	}

	c.statusUpdates.WithLabelValues(binding, status).Inc()
}

// ObserveHTTP records one outgoing request. code 0 means the request failed
// before a response arrived.
func (c *Collector) ObserveHTTP(client, method string, code int, d time.Duration) {
	if c == nil {
		return
	}

	c.httpRequests.WithLabelValues(client, method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(client, method).Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
