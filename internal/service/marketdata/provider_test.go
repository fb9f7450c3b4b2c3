package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"RateScope/internal/domain/models"
	"RateScope/internal/rule"
	"RateScope/pkg/cache"
	phttp "RateScope/pkg/http"
	"RateScope/pkg/logger"
	"RateScope/pkg/metrics"
)

func jsonStatPayload(keys []string, values map[int]float64) string {
	var idx []string
	for i, k := range keys {
		idx = append(idx, fmt.Sprintf("%q: %d", k, i))
	}
	var vals []string
	for pos, v := range values {
		vals = append(vals, fmt.Sprintf("%q: %v", fmt.Sprint(pos), v))
	}
	return fmt.Sprintf(`{"dimension": {"time": {"category": {"index": {%s}}}}, "value": {%s}}`,
		strings.Join(idx, ","), strings.Join(vals, ","))
}

func testSourcesServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/rates.txt", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		fmt.Fprint(w, "Platnost od|2T repo sazba\n19991126|5,25\n20200211|2,25\n")
	})
	mux.HandleFunc("/prc_hicp_midx", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		fmt.Fprint(w, jsonStatPayload(
			[]string{"2019-01", "2019-02", "2019-03", "2020-01", "2020-02", "2020-03"},
			map[int]float64{0: 100, 1: 100, 2: 100, 3: 103, 4: 103.5, 5: 104},
		))
	})
	mux.HandleFunc("/namq_10_gdp", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		fmt.Fprint(w, jsonStatPayload(
			[]string{"2019-Q1", "2020-Q1"},
			map[int]float64{0: 100, 1: 102},
		))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func directFixture(t *testing.T, srv *httptest.Server) *DirectProvider {
	t.Helper()

	mem := cache.NewMemoryCache()
	t.Cleanup(mem.Close)

	return NewDirectProvider(
		phttp.NewClient(phttp.WithTimeout(5*time.Second)),
		mem,
		Sources{
			PolicyRateURL: srv.URL + "/rates.txt",
			EurostatBase:  srv.URL,
			GeoCode:       "CZ",
			CacheTTL:      time.Hour,
			StartPeriod:   "2020-01",
			EndPeriod:     "2020-03",
			Defaults:      rule.FallbackParameters,
		},
		metrics.NewWith(prometheus.NewRegistry()),
		logger.Nop(),
	)
}

func TestDirectProviderLoad(t *testing.T) {
	var hits int64
	srv := testSourcesServer(t, &hits)
	p := directFixture(t, srv)

	ds, params, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ds.Len() != 3 {
		t.Fatalf("got %d periods, want 3", ds.Len())
	}
	if !ds.Aligned() {
		t.Fatal("series misaligned")
	}
	if ds.ActualRate[0] == nil || *ds.ActualRate[0] != 5.25 {
		t.Fatalf("2020-01 rate = %v, want carried 5.25", ds.ActualRate[0])
	}
	if ds.ActualRate[1] == nil || *ds.ActualRate[1] != 2.25 {
		t.Fatalf("2020-02 rate = %v, want 2.25", ds.ActualRate[1])
	}
	if ds.Inflation[0] == nil || *ds.Inflation[0] != 3.0 {
		t.Fatalf("2020-01 inflation = %v, want 3.0", ds.Inflation[0])
	}
	// Q1 closes in March; January and February have no output reading.
	if ds.OutputGrowth[0] != nil || ds.OutputGrowth[2] == nil {
		t.Fatalf("output growth = %v", ds.OutputGrowth)
	}
	if *ds.OutputGrowth[2] != 2.0 {
		t.Fatalf("2020-03 output growth = %v, want 2.0", *ds.OutputGrowth[2])
	}
	if ds.InflationTarget[0] == nil || *ds.InflationTarget[0] != 2.0 {
		t.Fatalf("2020-01 target = %v, want 2.0", ds.InflationTarget[0])
	}
	// Too few observations for a fit, so the defaults come back.
	if params.Rho != 0.80 {
		t.Fatalf("params = %+v, want fallback defaults", params)
	}
}

func TestDirectProviderUsesConfiguredDefaults(t *testing.T) {
	var hits int64
	srv := testSourcesServer(t, &hits)
	p := directFixture(t, srv)
	configured := models.RuleParameters{Rho: 0.5, RStar: 2.0, Alpha: 1.0, Beta: 1.0}
	p.sources.Defaults = configured

	_, params, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != configured {
		t.Fatalf("params = %+v, want the configured coefficients", params)
	}
}

func TestDirectProviderUsesCacheOnReload(t *testing.T) {
	var hits int64
	srv := testSourcesServer(t, &hits)
	p := directFixture(t, srv)

	if _, _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	first := atomic.LoadInt64(&hits)
	if first != 3 {
		t.Fatalf("first load hit upstream %d times, want 3", first)
	}

	if _, _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != first {
		t.Fatalf("second load hit upstream %d more times, want 0", got-first)
	}
}

func TestDirectProviderFailFast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := directFixture(t, srv)
	if _, _, err := p.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail when a source is down")
	}
}

func TestDirectProviderStatus(t *testing.T) {
	var hits int64
	srv := testSourcesServer(t, &hits)
	p := directFixture(t, srv)

	status := p.Status(context.Background())
	if info := status["repo_cache"].(cache.Info); info.Exists {
		t.Fatal("repo cache should not exist before the first load")
	}

	if _, _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	status = p.Status(context.Background())
	for _, key := range []string{"repo_cache", "cpi_cache", "gdp_cache"} {
		info, ok := status[key].(cache.Info)
		if !ok || !info.Exists {
			t.Fatalf("%s missing after load: %+v", key, status[key])
		}
	}
}

func TestDocumentsProviderLoad(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"generated_at": "2026-03-14T09:30:00Z",
			"dates": ["2020-01", "2020-02"],
			"actual_rate": [2.25, 1.75],
			"cpi": [3.0, null],
			"gdp": [1.5, 1.5],
			"pistar": [2.0, 2.0]
		}`)
	})
	mux.HandleFunc("/params.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rho": 0.85, "rstar": 1.2, "alpha": 1.4, "beta": 0.6}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewDocumentsProvider(
		phttp.NewClient(),
		srv.URL+"/data.json",
		srv.URL+"/params.json",
		logger.Nop(),
	)

	ds, params, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("got %d periods, want 2", ds.Len())
	}
	if ds.Inflation[1] != nil {
		t.Fatal("null document value should decode to nil")
	}
	if params.Rho != 0.85 {
		t.Fatalf("rho = %v, want 0.85", params.Rho)
	}
}

func TestDocumentsProviderEitherDocumentFailing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dates": [], "actual_rate": [], "cpi": [], "gdp": [], "pistar": []}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewDocumentsProvider(
		phttp.NewClient(),
		srv.URL+"/data.json",
		srv.URL+"/missing.json",
		logger.Nop(),
	)
	if _, _, err := p.Load(context.Background()); err == nil {
		t.Fatal("expected failure when the parameters document is missing")
	}
}
