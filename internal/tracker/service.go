// Package tracker provides the HTTP handlers for recording listings,
// previewing their metrics, and querying the portfolio summary and the
// product catalogue.
//
// All monetary values use shopspring/decimal, never float64 for money.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atmx/listing-metrics/internal/format"
	"github.com/atmx/listing-metrics/internal/metrics"
	"github.com/atmx/listing-metrics/internal/model"
	"github.com/atmx/listing-metrics/internal/normalize"
	"github.com/atmx/listing-metrics/internal/profit"
	"github.com/atmx/listing-metrics/internal/report"
	"github.com/atmx/listing-metrics/internal/store"
	"github.com/atmx/listing-metrics/internal/summary"
)

var errUnknownProduct = errors.New("unknown product")

// Service handles listing operations. Writes to the listing collection are
// serialized by a mutex (single-instance); the summary is recomputed from
// a fresh snapshot after every write.
type Service struct {
	store  store.Store
	policy normalize.Policy
	fmt    *format.Formatter
	mu     sync.Mutex
	wsHub  *WSHub // optional WebSocket hub for summary broadcasts
	now    func() time.Time
}

// NewService creates a new listing service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, policy normalize.Policy, f *format.Formatter, hub *WSHub) *Service {
	return &Service{
		store:  st,
		policy: policy,
		fmt:    f,
		wsHub:  hub,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// --- Response types ---

// ListingDisplay carries the formatted strings for one listing.
type ListingDisplay struct {
	SalePrice      string `json:"sale_price"`
	CostPrice      string `json:"cost_price"`
	MarketplaceFee string `json:"marketplace_fee"`
	TaxRate        string `json:"tax_rate"`
	ShippingCost   string `json:"shipping_cost"`
	GrossProfit    string `json:"gross_profit"`
	Margin         string `json:"margin"`
}

// ListingView is a listing plus its display strings.
type ListingView struct {
	model.Listing
	Display ListingDisplay `json:"display"`
}

// SummaryDisplay carries the formatted portfolio KPIs.
type SummaryDisplay struct {
	TotalGrossProfit string `json:"total_gross_profit"`
	AverageMargin    string `json:"average_margin"`
}

// SummaryView is the portfolio summary plus its display strings.
type SummaryView struct {
	model.PortfolioSummary
	Display SummaryDisplay `json:"display"`
}

// ProductRequest is the JSON body for product create and update.
type ProductRequest struct {
	Name        string   `json:"name"`
	WeightGrams string   `json:"weight_grams"`
	Dimensions  string   `json:"dimensions"`
	CostPrice   string   `json:"cost_price"`
	Material    string   `json:"material"`
	Size        string   `json:"size"`
	Colors      []string `json:"colors"`
}

func (s *Service) view(l model.Listing) ListingView {
	return ListingView{
		Listing: l,
		Display: ListingDisplay{
			SalePrice:      s.fmt.Currency(l.SalePrice),
			CostPrice:      s.fmt.Currency(l.CostPrice),
			MarketplaceFee: s.fmt.Fee(l.MarketplaceFee),
			TaxRate:        s.fmt.Percentage(l.TaxRate),
			ShippingCost:   s.fmt.Currency(l.ShippingCost),
			GrossProfit:    s.fmt.Currency(l.GrossProfit),
			Margin:         s.fmt.Percentage(l.MarginRatio),
		},
	}
}

func (s *Service) summaryView(sum model.PortfolioSummary) SummaryView {
	return SummaryView{
		PortfolioSummary: sum,
		Display: SummaryDisplay{
			TotalGrossProfit: s.fmt.Currency(sum.TotalGrossProfit),
			AverageMargin:    s.fmt.Percentage(sum.AverageMarginRatio),
		},
	}
}

// draft normalizes and validates a submitted form, filling a blank cost
// price from the referenced product.
func (s *Service) draft(ctx context.Context, r *http.Request, in model.FormInput) (model.Draft, error) {
	policy := s.policy
	if r.URL.Query().Get("strict") == "true" {
		policy = normalize.Strict
	}

	if policy == normalize.Lenient {
		for _, field := range normalize.Degraded(in) {
			metrics.InputFallbacks.WithLabelValues(field).Inc()
			slog.Warn("input coerced", "field", field)
		}
	}

	d, err := normalize.Normalizer{Policy: policy}.Draft(in)
	if err != nil {
		return d, err
	}

	if d.ProductID != "" {
		p, err := s.store.GetProduct(ctx, d.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return d, fmt.Errorf("%w: %s", errUnknownProduct, d.ProductID)
		}
		if err != nil {
			return d, err
		}
		if strings.TrimSpace(in.CostPrice) == "" {
			d.CostPrice = p.CostPrice
		}
	}

	return d, normalize.CheckSubmission(d)
}

func isClientError(err error) bool {
	var fe normalize.FieldErrors
	return errors.As(err, &fe) ||
		errors.Is(err, normalize.ErrNameRequired) ||
		errors.Is(err, normalize.ErrNonPositiveSale) ||
		errors.Is(err, errUnknownProduct)
}

// refresh recomputes the summary from the current collection, publishes
// it to the gauges and returns it.
func (s *Service) refresh(ctx context.Context) (model.PortfolioSummary, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	sum := summary.Aggregate(listings)
	metrics.ObserveSummary(sum)
	return sum, nil
}

func (s *Service) announce(ctx context.Context, kind, listingID string) {
	sum, err := s.refresh(ctx)
	if err != nil {
		slog.Error("summary refresh failed", "err", err)
		return
	}
	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:      kind,
			ListingID: listingID,
			Summary:   sum,
		})
	}
}

// --- Listing handlers ---

// CreateListing handles POST /api/v1/listings
func (s *Service) CreateListing(w http.ResponseWriter, r *http.Request) {
	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	d, err := s.draft(ctx, r, in)
	if err != nil {
		s.writeDraftError(w, err)
		return
	}

	l := profit.Compute(uuid.New().String(), d)
	l.CreatedAt = s.now()

	s.mu.Lock()
	err = s.store.InsertListing(ctx, &l)
	s.mu.Unlock()
	if err != nil {
		slog.Error("insert listing failed", "err", err)
		writeError(w, "failed to store listing", http.StatusInternalServerError)
		return
	}

	metrics.ListingsTotal.WithLabelValues("create").Inc()
	slog.Info("listing created",
		"id", l.ID,
		"name", l.Name,
		"sale_price", l.SalePrice.String(),
		"gross_profit", l.GrossProfit.String(),
		"margin", l.MarginRatio.String(),
	)
	s.announce(ctx, "listing_added", l.ID)

	writeJSON(w, http.StatusCreated, s.view(l))
}

// PreviewListing handles POST /api/v1/listings/preview
// Computes metrics without storing anything.
func (s *Service) PreviewListing(w http.ResponseWriter, r *http.Request) {
	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	d, err := s.draft(r.Context(), r, in)
	if err != nil {
		s.writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.view(profit.Compute("", d)))
}

// ListListings handles GET /api/v1/listings
func (s *Service) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.store.ListListings(r.Context())
	if err != nil {
		writeError(w, "failed to list listings", http.StatusInternalServerError)
		return
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, s.view(l))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetListing handles GET /api/v1/listings/{listingID}
func (s *Service) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	l, err := s.store.GetListing(r.Context(), listingID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "failed to load listing", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.view(*l))
}

// UpdateListing handles PUT /api/v1/listings/{listingID}
// The listing is re-derived from the new form; nothing is patched in place.
func (s *Service) UpdateListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	d, err := s.draft(ctx, r, in)
	if err != nil {
		s.writeDraftError(w, err)
		return
	}

	l := profit.Compute(listingID, d)

	s.mu.Lock()
	err = s.store.ReplaceListing(ctx, &l)
	s.mu.Unlock()
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("replace listing failed", "id", listingID, "err", err)
		writeError(w, "failed to store listing", http.StatusInternalServerError)
		return
	}

	stored, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		writeError(w, "failed to load listing", http.StatusInternalServerError)
		return
	}

	metrics.ListingsTotal.WithLabelValues("update").Inc()
	slog.Info("listing updated",
		"id", listingID,
		"gross_profit", stored.GrossProfit.String(),
		"margin", stored.MarginRatio.String(),
	)
	s.announce(ctx, "listing_updated", listingID)

	writeJSON(w, http.StatusOK, s.view(*stored))
}

// DeleteListing handles DELETE /api/v1/listings/{listingID}
func (s *Service) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	ctx := r.Context()

	s.mu.Lock()
	err := s.store.DeleteListing(ctx, listingID)
	s.mu.Unlock()
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("delete listing failed", "id", listingID, "err", err)
		writeError(w, "failed to delete listing", http.StatusInternalServerError)
		return
	}

	metrics.ListingsTotal.WithLabelValues("delete").Inc()
	slog.Info("listing deleted", "id", listingID)
	s.announce(ctx, "listing_removed", listingID)

	w.WriteHeader(http.StatusNoContent)
}

// GetSummary handles GET /api/v1/summary
func (s *Service) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.refresh(r.Context())
	if err != nil {
		writeError(w, "failed to compute summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.summaryView(sum))
}

// GetReport handles GET /api/v1/report
func (s *Service) GetReport(w http.ResponseWriter, r *http.Request) {
	listings, err := s.store.ListListings(r.Context())
	if err != nil {
		writeError(w, "failed to list listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.Markdown(listings, summary.Aggregate(listings), s.fmt)))
}

// --- Product handlers ---

func (s *Service) productFromRequest(req ProductRequest) (model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Product{}, normalize.ErrNameRequired
	}
	return model.Product{
		Name:        name,
		WeightGrams: normalize.LenientParse(req.WeightGrams),
		Dimensions:  strings.TrimSpace(req.Dimensions),
		CostPrice:   normalize.LenientParse(req.CostPrice),
		Material:    strings.TrimSpace(req.Material),
		Size:        strings.TrimSpace(req.Size),
		Colors:      req.Colors,
	}, nil
}

// CreateProduct handles POST /api/v1/products
func (s *Service) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.productFromRequest(req)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = uuid.New().String()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt

	if err := s.store.CreateProduct(r.Context(), &p); err != nil {
		slog.Error("create product failed", "err", err)
		writeError(w, "failed to store product", http.StatusInternalServerError)
		return
	}

	slog.Info("product created", "id", p.ID, "name", p.Name, "cost_price", p.CostPrice.String())
	writeJSON(w, http.StatusCreated, p)
}

// ListProducts handles GET /api/v1/products
func (s *Service) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		writeError(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{productID}
func (s *Service) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	p, err := s.store.GetProduct(r.Context(), productID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProduct handles PUT /api/v1/products/{productID}
func (s *Service) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.productFromRequest(req)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = productID
	p.UpdatedAt = s.now()

	ctx := r.Context()
	err = s.store.UpdateProduct(ctx, &p)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("update product failed", "id", productID, "err", err)
		writeError(w, "failed to store product", http.StatusInternalServerError)
		return
	}

	stored, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		writeError(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	slog.Info("product updated", "id", productID)
	writeJSON(w, http.StatusOK, stored)
}

// DeleteProduct handles DELETE /api/v1/products/{productID}
// Listings keep their product id and computed values.
func (s *Service) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	err := s.store.DeleteProduct(r.Context(), productID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("delete product failed", "id", productID, "err", err)
		writeError(w, "failed to delete product", http.StatusInternalServerError)
		return
	}

	slog.Info("product deleted", "id", productID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (s *Service) writeDraftError(w http.ResponseWriter, err error) {
	if isClientError(err) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Error("listing submission failed", "err", err)
	writeError(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
