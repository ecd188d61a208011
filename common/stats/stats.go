// Package stats provides a minimal scoped stats interface backed by
// go-metrics. Wrapping go-metrics keeps the dependency from leaking to
// anyone pulling harbor in as a library, and gives us hierarchical scoping
// similar in design to Finagle metrics.
package stats

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Stats users can either reference this global receiver or construct their own.
var CurrentStatsReceiver StatsReceiver = NilStatsReceiver()

// A receiver of stats that can be passed down a call tree, scoped at each
// level. Hierarchical names are joined with '/'.
type StatsReceiver interface {
	// Returns a receiver that automatically namespaces elements with the
	// given scope args:
	//
	//   statsReceiver.Scope("foo", "bar").Counter("baz")  // is equivalent to
	//   statsReceiver.Counter("foo", "bar", "baz")
	Scope(scope ...string) StatsReceiver

	// Provides an event counter.
	Counter(name ...string) Counter

	// Provides a gauge holding an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Provides a latency instrument recording callsite durations in ns.
	Latency(name ...string) Latency

	// Renders the current values as JSON.
	Render(pretty bool) []byte
}

type Counter interface {
	Inc(i int64)
	Count() int64
}

type Gauge interface {
	Update(i int64)
	Value() int64
}

// Latency records durations via a stopwatch:
//
//   defer stat.Latency("fooLatency_ns").Time().Stop()
type Latency interface {
	Time() *Stopwatch
	RecordDuration(d time.Duration)
}

type Stopwatch struct {
	start time.Time
	l     Latency
}

func (s *Stopwatch) Stop() {
	s.l.RecordDuration(time.Since(s.start))
}

// Returns a StatsReceiver backed by a fresh go-metrics registry.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{registry: metrics.NewRegistry()}
}

type defaultStatsReceiver struct {
	registry metrics.Registry
	scope    []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{registry: s.registry, scope: append(append([]string{}, s.scope...), scope...)}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name), metrics.NewCounter).(metrics.Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name), metrics.NewGauge).(metrics.Gauge)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	h := s.registry.GetOrRegister(s.scopedName(name), func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewExpDecaySample(1028, 0.015))
	}).(metrics.Histogram)
	return &histLatency{h: h}
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	out := map[string]interface{}{}
	s.registry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			out[name] = m.Count()
		case metrics.Gauge:
			out[name] = m.Value()
		case metrics.Histogram:
			snap := m.Snapshot()
			out[name+".avg"] = snap.Mean()
			out[name+".count"] = snap.Count()
			out[name+".max"] = snap.Max()
			out[name+".p50"] = snap.Percentile(0.5)
			out[name+".p99"] = snap.Percentile(0.99)
		}
	})
	var b []byte
	if pretty {
		b, _ = json.MarshalIndent(out, "", "  ")
	} else {
		b, _ = json.Marshal(out)
	}
	return b
}

// Scoped name elements have '/' characters replaced rather than rejected;
// counters are sometimes dynamically generated from error names.
func (s *defaultStatsReceiver) scopedName(name []string) string {
	elems := append(append([]string{}, s.scope...), name...)
	for i, e := range elems {
		elems[i] = strings.Replace(e, "/", "_SLASH_", -1)
	}
	return strings.Join(elems, "/")
}

type histLatency struct {
	h metrics.Histogram
}

func (l *histLatency) Time() *Stopwatch {
	return &Stopwatch{start: time.Now(), l: l}
}

func (l *histLatency) RecordDuration(d time.Duration) {
	l.h.Update(int64(d))
}

// Returns a stats receiver that ignores everything it is given.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter      { return &nilCounter{} }
func (s *nilStatsReceiver) Gauge(name ...string) Gauge          { return &nilGauge{} }
func (s *nilStatsReceiver) Latency(name ...string) Latency      { return &nilLatency{} }
func (s *nilStatsReceiver) Render(pretty bool) []byte           { return []byte("{}") }

type nilCounter struct{}

func (c *nilCounter) Inc(i int64)  {}
func (c *nilCounter) Count() int64 { return 0 }

type nilGauge struct{}

func (g *nilGauge) Update(i int64) {}
func (g *nilGauge) Value() int64   { return 0 }

type nilLatency struct{}

func (l *nilLatency) Time() *Stopwatch               { return &Stopwatch{start: time.Now(), l: l} }
func (l *nilLatency) RecordDuration(d time.Duration) {}
