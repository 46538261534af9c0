package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

func TestObserveSummary(t *testing.T) {
	ObserveSummary(model.PortfolioSummary{
		TotalGrossProfit:   decimal.RequireFromString("69.925"),
		AverageMarginRatio: decimal.RequireFromString("0.25"),
		ListingCount:       2,
	})

	if got := testutil.ToFloat64(ListingCount); got != 2 {
		t.Errorf("listing count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(TotalGrossProfit); got != 69.925 {
		t.Errorf("total gross profit = %v, want 69.925", got)
	}
	if got := testutil.ToFloat64(AverageMargin); got != 0.25 {
		t.Errorf("average margin = %v, want 0.25", got)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/listings/{listingID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest("GET", "/api/v1/listings/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	c := HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/listings/{listingID}", "404")
	if got := testutil.ToFloat64(c); got != 2 {
		t.Errorf("requests for pattern = %v, want 2", got)
	}
}

func TestMiddleware_KeepsHijacker(t *testing.T) {
	var hijackable bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, hijackable = w.(http.Hijacker)
		w.WriteHeader(http.StatusNoContent)
	}))

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !hijackable {
		t.Error("wrapped writer does not implement http.Hijacker")
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
