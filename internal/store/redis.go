package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atmx/listing-metrics/internal/model"
)

const listingsKey = "listings"

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
//
// Only stored rows are cached. The portfolio summary is always recomputed
// from the current snapshot by the caller.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) InsertListing(ctx context.Context, l *model.Listing) error {
	if err := s.primary.InsertListing(ctx, l); err != nil {
		return err
	}
	s.rdb.Del(ctx, listingsKey)
	return nil
}

func (s *CachedStore) ReplaceListing(ctx context.Context, l *model.Listing) error {
	if err := s.primary.ReplaceListing(ctx, l); err != nil {
		return err
	}
	s.rdb.Del(ctx, listingsKey)
	return nil
}

func (s *CachedStore) DeleteListing(ctx context.Context, id string) error {
	if err := s.primary.DeleteListing(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, listingsKey)
	return nil
}

func (s *CachedStore) CreateProduct(ctx context.Context, p *model.Product) error {
	if err := s.primary.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.cacheProduct(ctx, p)
	return nil
}

func (s *CachedStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	if err := s.primary.UpdateProduct(ctx, p); err != nil {
		return err
	}
	// Invalidate; the primary keeps the stored CreatedAt.
	s.rdb.Del(ctx, productKey(p.ID))
	return nil
}

func (s *CachedStore) DeleteProduct(ctx context.Context, id string) error {
	if err := s.primary.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, productKey(id))
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ListListings(ctx context.Context) ([]model.Listing, error) {
	data, err := s.rdb.Get(ctx, listingsKey).Bytes()
	if err == nil {
		var listings []model.Listing
		if json.Unmarshal(data, &listings) == nil {
			return listings, nil
		}
	}

	// Cache miss: read from primary.
	listings, err := s.primary.ListListings(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(listings); err == nil {
		s.rdb.Set(ctx, listingsKey, data, s.ttl)
	}
	return listings, nil
}

func (s *CachedStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	data, err := s.rdb.Get(ctx, productKey(id)).Bytes()
	if err == nil {
		var p model.Product
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	}

	p, err := s.primary.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheProduct(ctx, p)
	return p, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	return s.primary.GetListing(ctx, id)
}

func (s *CachedStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.primary.ListProducts(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheProduct(ctx context.Context, p *model.Product) {
	if data, err := json.Marshal(p); err == nil {
		s.rdb.Set(ctx, productKey(p.ID), data, s.ttl)
	}
}

func productKey(id string) string { return fmt.Sprintf("product:%s", id) }
