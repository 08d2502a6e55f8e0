package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// readMetric snapshots a single collector sample.
func readMetric(t *testing.T, m prometheus.Metric) *dto.Metric {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Failed to read metric: %v", err)
	}
	return &out
}

func TestMetrics_Counters(t *testing.T) {
	tests := []struct {
		name    string
		counter prometheus.Counter
		add     float64
	}{
		{name: "resolution success", counter: ResolutionsTotal.WithLabelValues("success"), add: 1},
		{name: "resolution not found", counter: ResolutionsTotal.WithLabelValues("not_found"), add: 1},
		{name: "resolution probe", counter: ResolutionsTotal.WithLabelValues("probe"), add: 1},
		{name: "resolved tracks", counter: ResolvedTracksTotal, add: 3},
		{name: "extraction conversion vtt", counter: ExtractionsTotal.WithLabelValues("conversion", "vtt"), add: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := readMetric(t, tt.counter).GetCounter().GetValue()
			tt.counter.Add(tt.add)
			after := readMetric(t, tt.counter).GetCounter().GetValue()
			if after-before != tt.add {
				t.Errorf("Expected counter to grow by %.0f, got %.0f", tt.add, after-before)
			}
		})
	}
}

func TestMetrics_ProbeDuration(t *testing.T) {
	before := readMetric(t, ProbeDuration).GetHistogram().GetSampleCount()
	ProbeDuration.Observe(1.5)
	if got := readMetric(t, ProbeDuration).GetHistogram().GetSampleCount(); got != before+1 {
		t.Errorf("Expected one more probe duration sample, got %d -> %d", before, got)
	}
}

func TestMetrics_ActiveConversions(t *testing.T) {
	before := readMetric(t, ActiveConversions).GetGauge().GetValue()
	ActiveConversions.Inc()
	defer ActiveConversions.Dec()
	if got := readMetric(t, ActiveConversions).GetGauge().GetValue(); got != before+1 {
		t.Errorf("Expected active conversions %.0f, got %.0f", before+1, got)
	}
}

func TestNewHTTPServer(t *testing.T) {
	tests := []struct {
		address string
		port    int
		want    string
	}{
		{address: "localhost", port: 9191, want: "localhost:9191"},
		{address: "0.0.0.0", port: 0, want: "0.0.0.0:9090"},
		{address: "::1", port: 9090, want: "[::1]:9090"},
	}
	for _, tt := range tests {
		srv := NewHTTPServer(tt.address, tt.port)
		if srv.Addr != tt.want {
			t.Errorf("NewHTTPServer(%q, %d).Addr = %q, want %q", tt.address, tt.port, srv.Addr, tt.want)
		}
		if srv.ReadHeaderTimeout == 0 {
			t.Error("Expected a read header timeout")
		}
	}
}

func TestNewHTTPServer_Routes(t *testing.T) {
	ResolutionsTotal.WithLabelValues("success").Inc()
	ts := httptest.NewServer(NewHTTPServer("localhost", 0).Handler)
	defer ts.Close()

	tests := []struct {
		path     string
		contains string
	}{
		{path: "/metrics", contains: "subtirrent_resolutions_total"},
		{path: "/healthz", contains: "ok"},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", tt.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", tt.path, resp.StatusCode)
		}
		if !strings.Contains(string(body), tt.contains) {
			t.Errorf("GET %s: expected body to contain %q", tt.path, tt.contains)
		}
	}
}
