package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dbseed/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec cell.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

// TestNewBackend validates field initialization, the job name default, and
// that the collectors accept their expected label sets.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{
			name:       "missing gateway URL returns error",
			jobName:    "missile_seed",
			gatewayURL: "",
			wantErr:    true,
		},
		{
			name:        "empty job name uses default",
			jobName:     "",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "seed",
		},
		{
			name:        "explicit job name is preserved",
			jobName:     "missile_seed",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "missile_seed",
		},
	}

	for _, tt := range tests {
		tt := tt // capture
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewBackend(%q, %q) error = nil, want non-nil", tt.jobName, tt.gatewayURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v", tt.jobName, tt.gatewayURL, err)
			}

			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
			if b.gatewayURL != tt.gatewayURL {
				t.Fatalf("backend.gatewayURL = %q, want %q", b.gatewayURL, tt.gatewayURL)
			}
			if b.stepCounter == nil || b.stepDuration == nil || b.rowCounter == nil {
				t.Fatalf("backend has nil collectors: %+v", b)
			}

			// Label cardinality: these calls should not panic.
			b.stepCounter.WithLabelValues("load", "ok").Add(1)
			b.stepDuration.WithLabelValues("transfer", "error").Observe(0.5)
			b.rowCounter.WithLabelValues("inserted").Add(1)
		})
	}
}

// TestIncCounter verifies routing to the right collector and that unknown
// metric names are ignored.
func TestIncCounter(t *testing.T) {
	t.Parallel()

	type call struct {
		name   string
		delta  float64
		labels metrics.Labels
	}
	tests := []struct {
		name  string
		calls []call
		want  func(t *testing.T, b *Backend)
	}{
		{
			name: "increments step counter with labels",
			calls: []call{
				{"seed_step_total", 3, metrics.Labels{"step": "transfer", "status": "ok"}},
			},
			want: func(t *testing.T, b *Backend) {
				got := readCounterValue(t, b.stepCounter.WithLabelValues("transfer", "ok"))
				if got != 3 {
					t.Fatalf("stepCounter value = %v, want 3", got)
				}
			},
		},
		{
			name: "increments row counter with kind label",
			calls: []call{
				{"seed_rows_total", 16, metrics.Labels{"kind": "staged"}},
				{"seed_rows_total", 2, metrics.Labels{"kind": "skipped"}},
			},
			want: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.rowCounter.WithLabelValues("staged")); got != 16 {
					t.Fatalf("rowCounter[staged] = %v, want 16", got)
				}
				if got := readCounterValue(t, b.rowCounter.WithLabelValues("skipped")); got != 2 {
					t.Fatalf("rowCounter[skipped] = %v, want 2", got)
				}
			},
		},
		{
			name: "unknown metric name is ignored",
			calls: []call{
				{"unknown_metric", 10, metrics.Labels{"foo": "bar"}},
			},
			want: func(t *testing.T, b *Backend) {
				if got := readCounterValue(t, b.stepCounter.WithLabelValues("x", "y")); got != 0 {
					t.Fatalf("stepCounter value = %v, want 0 (unchanged)", got)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt // capture
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend("seed", "http://example.com")
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			for _, c := range tt.calls {
				b.IncCounter(c.name, c.delta, c.labels)
			}
			tt.want(t, b)
		})
	}
}

// TestIncCounterNilCollectors ensures a zero-value backend does not panic.
func TestIncCounterNilCollectors(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("seed_step_total", 1, metrics.Labels{"step": "s", "status": "ok"})
	b.IncCounter("seed_rows_total", 1, metrics.Labels{"kind": "inserted"})
	b.IncCounter("unknown", 1, metrics.Labels{})
}

// TestObserveHistogram verifies the step duration summary records valid
// observations and ignores other metric names.
func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		metricName string
		value      float64
		wantCount  uint64
		wantSum    float64
	}{
		{
			name:       "records duration for the step metric",
			metricName: "seed_step_duration_seconds",
			value:      1.5,
			wantCount:  1,
			wantSum:    1.5,
		},
		{
			name:       "ignores unknown metric name",
			metricName: "other_metric",
			value:      2.0,
		},
	}

	for _, tt := range tests {
		tt := tt // capture
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend("seed", "http://example.com")
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}

			b.ObserveHistogram(tt.metricName, tt.value, metrics.Labels{"step": "load", "status": "ok"})

			gotCount, gotSum := readSummaryCountSum(t, b.stepDuration, "load", "ok")
			if gotCount != tt.wantCount {
				t.Fatalf("summary sample count = %d, want %d", gotCount, tt.wantCount)
			}
			if gotSum != tt.wantSum {
				t.Fatalf("summary sample sum = %v, want %v", gotSum, tt.wantSum)
			}
		})
	}
}

// TestFlush verifies that Flush pushes the registry to the configured
// Pushgateway URL.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequest struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushRequest, 1)

	// Fake Pushgateway that records the incoming request.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequest{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("missile_seed", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	// Add some data so the push body is non-empty.
	b.IncCounter("seed_step_total", 1, metrics.Labels{"step": "load", "status": "ok"})
	b.IncCounter("seed_rows_total", 16, metrics.Labels{"kind": "staged"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequest
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}

	if got.method == "" {
		t.Fatalf("push request method is empty")
	}
	if got.path != "/metrics/job/missile_seed" {
		t.Fatalf("push request path = %q, want %q", got.path, "/metrics/job/missile_seed")
	}
	if got.bodyLen == 0 {
		t.Fatalf("push request body length = 0, want > 0")
	}
}
