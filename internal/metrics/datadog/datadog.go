// Package datadog emits seeding metrics over the DogStatsD protocol.
//
// It adapts metrics.Backend onto a statsd.Client: counter increments become
// DogStatsD counts, histogram observations become DogStatsD histograms, and
// metric labels are rendered as "key:value" tags. All Datadog-specific
// configuration stays inside this package; the run logic only sees
// metrics.Backend.
package datadog

import (
	"fmt"

	"dbseed/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config holds DogStatsD client settings.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "seed.".
	Namespace string

	// GlobalTags are tags applied to every metric emitted by this backend,
	// e.g. []string{"env:prod","service:dbseed"}.
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend. Install it as the
// process-wide backend via metrics.SetBackend.
type Backend struct {
	client *statsd.Client
}

// NewBackend dials a DogStatsD client for the given configuration.
// The Addr field is required; when empty, NewBackend returns an error.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	c, err := statsd.New(cfg.Addr, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

// clientOptions translates Config into statsd construction options. The v5
// client takes namespace and global tags only at construction time.
func clientOptions(cfg Config) []statsd.Option {
	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	return opts
}

// IncCounter implements metrics.Backend.IncCounter as a DogStatsD count.
// Fractional deltas are truncated; the seeding counters only use integers.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram as a DogStatsD
// histogram sample.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush implements metrics.Backend.Flush. Closing the client drains any
// buffered samples, which is what a short-lived run wants at exit.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// labelsToTags renders labels as DogStatsD "key:value" tag strings.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, fmt.Sprintf("%s:%s", k, v))
	}
	return out
}
