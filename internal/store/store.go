// Package store defines the persistence interface for the listing metrics
// service. Implementations include PostgreSQL (source of truth), Redis
// (read-through cache), and in-memory (for testing and development).
//
// Stores hold inputs and derived values exactly as computed. They never
// compute metrics or summaries themselves.
package store

import (
	"context"
	"errors"

	"github.com/atmx/listing-metrics/internal/model"
)

var (
	// ErrNotFound is returned when a listing or product id is unknown.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateID is returned when inserting an id that already exists.
	ErrDuplicateID = errors.New("store: duplicate id")
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Listing collection (ordered by insertion) ---

	// InsertListing appends a new listing to the collection.
	InsertListing(ctx context.Context, l *model.Listing) error

	// ReplaceListing swaps a listing for a re-derived one with the same id,
	// keeping its position and creation time.
	ReplaceListing(ctx context.Context, l *model.Listing) error

	// DeleteListing removes a listing.
	DeleteListing(ctx context.Context, id string) error

	// GetListing retrieves a listing by id.
	GetListing(ctx context.Context, id string) (*model.Listing, error)

	// ListListings returns a snapshot of the collection in insertion order.
	ListListings(ctx context.Context) ([]model.Listing, error)

	// --- Product catalogue ---

	// CreateProduct persists a new product.
	CreateProduct(ctx context.Context, p *model.Product) error

	// UpdateProduct overwrites an existing product.
	UpdateProduct(ctx context.Context, p *model.Product) error

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id string) error

	// GetProduct retrieves a product by id.
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// ListProducts returns all products, oldest first.
	ListProducts(ctx context.Context) ([]model.Product, error)
}
