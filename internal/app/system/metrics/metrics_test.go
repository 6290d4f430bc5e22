package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	return -1
}

func matches(m *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestCollector_CountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.Search(OutcomeFound)
	c.Search(OutcomeFound)
	c.Search(OutcomeEmpty)
	c.ListingWrite("create", true)
	c.ListingWrite("create", false)
	c.SignIn("password", false)

	if v := counterValue(t, reg, "takeandeat_searches_total", map[string]string{"outcome": "found"}); v != 2 {
		t.Errorf("searches{found} = %v, want 2", v)
	}
	if v := counterValue(t, reg, "takeandeat_searches_total", map[string]string{"outcome": "empty"}); v != 1 {
		t.Errorf("searches{empty} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "takeandeat_listing_writes_total", map[string]string{"op": "create", "result": "error"}); v != 1 {
		t.Errorf("listing_writes{create,error} = %v, want 1", v)
	}
	if v := counterValue(t, reg, "takeandeat_sign_ins_total", map[string]string{"method": "password", "result": "error"}); v != 1 {
		t.Errorf("sign_ins{password,error} = %v, want 1", v)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.Search(OutcomeFound)
	c.ListingWrite("delete", true)
	c.SignIn("google", true)
	c.HTTPRequest("GET", 200, time.Millisecond)

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/resource/nowhere", nil))

	if v := counterValue(t, reg, "takeandeat_http_requests_total", map[string]string{"method": "GET", "status_code": "404"}); v != 1 {
		t.Errorf("http_requests{GET,404} = %v, want 1", v)
	}
}

func TestStoreGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	err := RegisterStoreGauges(reg, func(ctx context.Context) map[string]int64 {
		return map[string]int64{"listings_open": 7, "profiles": 3}
	}, time.Second)
	if err != nil {
		t.Fatalf("RegisterStoreGauges: %v", err)
	}

	if v := counterValue(t, reg, "takeandeat_records", map[string]string{"kind": "listings_open"}); v != 7 {
		t.Errorf("records{listings_open} = %v, want 7", v)
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.Search(OutcomeEmpty)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "takeandeat_searches_total") {
		t.Error("exposition missing takeandeat_searches_total")
	}
}
