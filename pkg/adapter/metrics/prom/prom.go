// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package prom exports the dispatch metrics in the Prometheus format.
// Metrics implements the jobsuc.Observer interface, so it counts the
// applied and rejected job transitions, and it also measures the
// duration of the served HTTP requests.
package prom

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes the names of all metrics.
const Namespace = "dispatch"

// Metrics holds the registered collectors.
type Metrics struct {
	reg *prometheus.Registry

	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry which also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "job_transitions_total",
			Help:      "The total number of applied job status transitions",
		}, []string{"from", "to", "role"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "job_transition_rejections_total",
			Help:      "The total number of rejected job status transitions",
		}, []string{"to", "role", "reason"}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

// Transitioned counts an applied transition.
func (m *Metrics) Transitioned(from, to model.JobStatus, by model.Role) {
	m.transitions.WithLabelValues(from.String(), to.String(), role(by)).Inc()
}

// Rejected counts a rejected transition by its error kind.
func (m *Metrics) Rejected(to model.JobStatus, by model.Role, err error) {
	m.rejections.WithLabelValues(status(to), role(by), Reason(err)).Inc()
}

// ObserveRequest records the d duration of a served request. The
// route must be the matched route pattern, so the label set stays
// bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).
		Observe(d.Seconds())
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Reason maps err to a short label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, model.ErrForbidden):
		return "forbidden"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// status and role tolerate invalid values since a rejected request may
// carry anything.
func status(s model.JobStatus) string {
	if s.Validate() != nil {
		return "INVALID"
	}
	return s.String()
}

func role(r model.Role) string {
	if r.Validate() != nil {
		return "INVALID"
	}
	return r.String()
}
