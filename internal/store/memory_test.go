package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func listing(id string, gross float64) *model.Listing {
	return &model.Listing{
		ID:          id,
		Name:        "listing " + id,
		SalePrice:   d(100),
		GrossProfit: d(gross),
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(listings []model.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryStore_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.InsertListing(ctx, listing(id, 1)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	got, err := s.ListListings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c", "a", "b"}; !equalIDs(ids(got), want) {
		t.Errorf("order = %v, want %v", ids(got), want)
	}
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.InsertListing(ctx, listing("a", 1)); err != nil {
		t.Fatal(err)
	}
	err := s.InsertListing(ctx, listing("a", 2))
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestMemoryStore_SnapshotIsStable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.InsertListing(ctx, listing("a", 1))
	_ = s.InsertListing(ctx, listing("b", 2))

	snapshot, _ := s.ListListings(ctx)

	_ = s.InsertListing(ctx, listing("c", 3))
	_ = s.DeleteListing(ctx, "a")
	_ = s.ReplaceListing(ctx, listing("b", 99))

	if want := []string{"a", "b"}; !equalIDs(ids(snapshot), want) {
		t.Errorf("snapshot changed: %v", ids(snapshot))
	}
	if !snapshot[1].GrossProfit.Equal(d(2)) {
		t.Errorf("snapshot row mutated: %s", snapshot[1].GrossProfit)
	}
}

func TestMemoryStore_ReplaceKeepsPositionAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.InsertListing(ctx, listing("a", 1))
	_ = s.InsertListing(ctx, listing("b", 2))
	_ = s.InsertListing(ctx, listing("c", 3))

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	replacement := listing("b", 42)
	replacement.CreatedAt = created.Add(time.Hour)
	if err := s.ReplaceListing(ctx, replacement); err != nil {
		t.Fatal(err)
	}

	got, _ := s.ListListings(ctx)
	if want := []string{"a", "b", "c"}; !equalIDs(ids(got), want) {
		t.Errorf("order = %v, want %v", ids(got), want)
	}
	if !got[1].GrossProfit.Equal(d(42)) {
		t.Errorf("gross profit = %s, want 42", got[1].GrossProfit)
	}
	if !got[1].CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got[1].CreatedAt, created)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetListing(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetListing: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteListing(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteListing: expected ErrNotFound, got %v", err)
	}
	if err := s.ReplaceListing(ctx, listing("missing", 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceListing: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetProduct(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProduct: expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateProduct(ctx, &model.Product{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateProduct: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteProduct(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProduct: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_DeleteListing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.InsertListing(ctx, listing("a", 1))
	_ = s.InsertListing(ctx, listing("b", 2))

	if err := s.DeleteListing(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListListings(ctx)
	if want := []string{"b"}; !equalIDs(ids(got), want) {
		t.Errorf("after delete = %v, want %v", ids(got), want)
	}
}

func TestMemoryStore_Products(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p2 := &model.Product{ID: "p2", Name: "Mug", CostPrice: d(12), CreatedAt: base.Add(time.Minute)}
	p1 := &model.Product{ID: "p1", Name: "Shirt", CostPrice: d(30), Colors: []string{"red"}, CreatedAt: base}
	if err := s.CreateProduct(ctx, p2); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProduct(ctx, p1); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProduct(ctx, p1); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	// Caller-side mutation must not leak into the store.
	p1.Colors[0] = "blue"
	got, err := s.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Colors[0] != "red" {
		t.Errorf("colors = %v, want [red]", got.Colors)
	}

	list, _ := s.ListProducts(ctx)
	if len(list) != 2 || list[0].ID != "p1" || list[1].ID != "p2" {
		t.Errorf("ListProducts order wrong: %+v", list)
	}

	update := &model.Product{ID: "p1", Name: "Shirt v2", CostPrice: d(28), UpdatedAt: base.Add(time.Hour)}
	if err := s.UpdateProduct(ctx, update); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProduct(ctx, "p1")
	if got.Name != "Shirt v2" || !got.CreatedAt.Equal(base) {
		t.Errorf("update lost fields: %+v", got)
	}

	if err := s.DeleteProduct(ctx, "p2"); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListProducts(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 product after delete, got %d", len(list))
	}
}
