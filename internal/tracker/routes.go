package tracker

import "github.com/go-chi/chi/v5"

// Mount registers the listing and product routes on r, which is normally
// the /api/v1 sub-router.
func (s *Service) Mount(r chi.Router) {
	// Listings.
	r.Get("/listings", s.ListListings)
	r.Post("/listings", s.CreateListing)
	r.Post("/listings/preview", s.PreviewListing)
	r.Get("/listings/{listingID}", s.GetListing)
	r.Put("/listings/{listingID}", s.UpdateListing)
	r.Delete("/listings/{listingID}", s.DeleteListing)

	// Portfolio.
	r.Get("/summary", s.GetSummary)
	r.Get("/report", s.GetReport)

	// Product catalogue.
	r.Get("/products", s.ListProducts)
	r.Post("/products", s.CreateProduct)
	r.Get("/products/{productID}", s.GetProduct)
	r.Put("/products/{productID}", s.UpdateProduct)
	r.Delete("/products/{productID}", s.DeleteProduct)
}
