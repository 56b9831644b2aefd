package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"parknest/internal/entities"
	"parknest/internal/storage"
)

type ListingRepository struct {
	Store storage.Store
}

func NewListingRepository(store storage.Store) *ListingRepository {
	return &ListingRepository{Store: store}
}

// List returns the persisted listings in insertion order. A value that does
// not parse is treated like a missing one.
func (r *ListingRepository) List(ctx context.Context) ([]entities.Listing, error) {
	raw, ok, err := r.Store.Get(ctx, KeyUserListings)
	if err != nil {
		return nil, fmt.Errorf("error reading listings: %w", err)
	}
	listings := []entities.Listing{}
	if !ok || raw == "" {
		return listings, nil
	}
	if err := json.Unmarshal([]byte(raw), &listings); err != nil {
		log.Printf("Discarding unreadable %s value: %v", KeyUserListings, err)
		return []entities.Listing{}, nil
	}
	return listings, nil
}

func (r *ListingRepository) Save(ctx context.Context, listings []entities.Listing) error {
	if listings == nil {
		listings = []entities.Listing{}
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("error encoding listings: %w", err)
	}
	if err := r.Store.Set(ctx, KeyUserListings, string(data)); err != nil {
		return fmt.Errorf("error saving listings: %w", err)
	}
	return nil
}
