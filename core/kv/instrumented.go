package kv

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "couchsession"

// Metrics holds the collectors used by an instrumented client.
type Metrics struct {
	Operations *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
}

// NewMetrics registers the kv collectors with reg. Collectors already
// registered by an earlier call are reused, so several clients may share reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(nil)
	m := &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kv",
				Name:      "operations_total",
				Help:      "Total key-value operations by backend, operation and result",
			},
			[]string{"backend", "op", "result"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "kv",
				Name:      "operation_duration_seconds",
				Help:      "Key-value operation latency in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "op"},
		),
	}
	if reg != nil {
		m.Operations = register(reg, m.Operations)
		m.Latency = register(reg, m.Latency)
	}
	return m
}

// register adds c to reg or returns the equal collector registered before.
// Any other registration error panics, as promauto does.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

type instrumented struct {
	next    Client
	backend string
	metrics *Metrics
}

// Instrumented decorates next with Prometheus counters and latency histograms.
func Instrumented(next Client, backend string, metrics *Metrics) Client {
	return &instrumented{next: next, backend: backend, metrics: metrics}
}

func (i *instrumented) Get(ctx context.Context, key string, dst any) error {
	start := time.Now()
	err := i.next.Get(ctx, key, dst)
	i.observe("get", start, err)
	return err
}

func (i *instrumented) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value, ttl)
	i.observe("set", start, err)
	return err
}

func (i *instrumented) Touch(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := i.next.Touch(ctx, key, ttl)
	i.observe("touch", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

// Sweep forwards to the wrapped client when it expires keys lazily.
func (i *instrumented) Sweep() []string {
	sw, ok := i.next.(Sweeper)
	if !ok {
		return nil
	}
	start := time.Now()
	removed := sw.Sweep()
	i.observe("sweep", start, nil)
	return removed
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrKeyNotFound):
		result = "miss"
	case err != nil:
		result = "error"
	}
	i.metrics.Operations.WithLabelValues(i.backend, op, result).Inc()
	i.metrics.Latency.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}
