package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/atmx/listing-metrics/internal/model"
)

// MemoryStore implements Store with in-memory structures. Used for testing
// and development. Not suitable for production (no persistence).
//
// The listing collection is copy-on-write: every mutation builds a new slice
// and swaps it in, so a snapshot handed to a reader never changes.
type MemoryStore struct {
	mu       sync.RWMutex
	listings []model.Listing
	products map[string]*model.Product
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*model.Product),
	}
}

func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.listings, func(l model.Listing) bool { return l.ID == id })
}

func (s *MemoryStore) InsertListing(_ context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(l.ID) >= 0 {
		return fmt.Errorf("%w: listing %s", ErrDuplicateID, l.ID)
	}
	next := make([]model.Listing, len(s.listings), len(s.listings)+1)
	copy(next, s.listings)
	s.listings = append(next, *l)
	return nil
}

func (s *MemoryStore) ReplaceListing(_ context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(l.ID)
	if i < 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, l.ID)
	}
	replacement := *l
	replacement.CreatedAt = s.listings[i].CreatedAt

	next := slices.Clone(s.listings)
	next[i] = replacement
	s.listings = next
	return nil
}

func (s *MemoryStore) DeleteListing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, id)
	}
	s.listings = slices.Delete(slices.Clone(s.listings), i, i+1)
	return nil
}

func (s *MemoryStore) GetListing(_ context.Context, id string) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: listing %s", ErrNotFound, id)
	}
	l := s.listings[i]
	return &l, nil
}

func (s *MemoryStore) ListListings(_ context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	snapshot := s.listings
	s.mu.RUnlock()

	// The snapshot is never written again; clone so callers may modify theirs.
	return slices.Clone(snapshot), nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; ok {
		return fmt.Errorf("%w: product %s", ErrDuplicateID, p.ID)
	}
	cp := cloneProduct(*p)
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ID)
	}
	cp := cloneProduct(*p)
	cp.CreatedAt = existing.CreatedAt
	s.products[p.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	cp := cloneProduct(*p)
	return &cp, nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, cloneProduct(*p))
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func cloneProduct(p model.Product) model.Product {
	p.Colors = slices.Clone(p.Colors)
	return p
}
