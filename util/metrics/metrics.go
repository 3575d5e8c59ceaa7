// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algojig
//
// go-algojig is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algojig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algojig.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics keeps the harness counters in a prometheus registry of its
// own, so that embedding programs can expose or ignore them.
package metrics

import (
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/algorand/go-algojig/logging"
)

// MetricName describes the name and description of a single metric
type MetricName struct {
	Name        string
	Description string
}

var (
	// EngineInvocationsTotal counts engine subprocess runs by command and result
	EngineInvocationsTotal = MetricName{Name: "algojig_engine_invocations_total", Description: "Number of engine subprocess invocations"}
	// EngineMicrosTotal is the wall time spent inside engine subprocesses
	EngineMicrosTotal = MetricName{Name: "algojig_engine_microseconds_total", Description: "Microseconds spent in engine subprocesses"}
	// LedgerWriteMicrosTotal is the time spent writing the ledger image to sqlite
	LedgerWriteMicrosTotal = MetricName{Name: "algojig_ledger_write_microseconds_total", Description: "Microseconds spent writing the ledger image"}
	// LedgerEvalsTotal counts transaction group evaluations by result
	LedgerEvalsTotal = MetricName{Name: "algojig_ledger_evals_total", Description: "Number of transaction group evaluations"}
)

var registry = prometheus.NewRegistry()

// DefaultRegistry returns the registry every counter of this package is
// registered with.
func DefaultRegistry() *prometheus.Registry {
	return registry
}

// Counter represent a single counter variable, optionally split by labels.
type Counter struct {
	vec *prometheus.CounterVec
}

// MakeCounter creates a counter with the given label names and registers it.
func MakeCounter(metric MetricName, labelNames ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric.Name,
		Help: metric.Description,
	}, labelNames)
	if err := registry.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			vec = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			logging.Base().Warnf("unable to register metric %s: %v", metric.Name, err)
		}
	}
	return &Counter{vec: vec}
}

// Inc increases counter by 1
func (counter *Counter) Inc(labels map[string]string) {
	counter.AddUint64(1, labels)
}

// AddUint64 increases counter by x
func (counter *Counter) AddUint64(x uint64, labels map[string]string) {
	c, err := counter.vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		logging.Base().Warnf("counter labels %v: %v", labels, err)
		return
	}
	c.Add(float64(x))
}

// AddMicrosecondsSince increases counter by microseconds between Time t and now.
func (counter *Counter) AddMicrosecondsSince(t time.Time, labels map[string]string) {
	counter.AddUint64(uint64(time.Since(t).Microseconds()), labels)
}

// GetUint64ValueForLabels returns the value of the counter for the given labels or 0 if it's not found.
func (counter *Counter) GetUint64ValueForLabels(labels map[string]string) uint64 {
	c, err := counter.vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return uint64(m.GetCounter().GetValue())
}

// WriteMetrics writes every registered metric to w in the prometheus text
// exposition format.
func WriteMetrics(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
