package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"parknest/internal/entities"
	"parknest/internal/repository"
)

var (
	spaceTypes     = map[string]bool{"driveway": true, "garage": true, "lot": true, "street": true, "other": true}
	availabilities = map[string]bool{"fulltime": true, "weekdays": true, "weekends": true, "custom": true}
)

const defaultAvailability = "fulltime"

type ListingService struct {
	repo     *repository.ListingRepository
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

func NewListingService(repo *repository.ListingRepository, notifier Notifier) *ListingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ListingService{
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Create validates the form and appends a new listing to the persisted
// sequence. ownerEmail, when set, receives a confirmation.
func (s *ListingService) Create(ctx context.Context, form entities.ListingForm, ownerEmail string) (*entities.Listing, error) {
	if err := validateListingForm(&form); err != nil {
		return nil, err
	}

	listings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(listings))
	for _, l := range listings {
		taken[l.ID] = true
	}
	id := s.newID()
	for taken[id] {
		id = s.newID()
	}

	listing := entities.Listing{
		ID:           id,
		Title:        form.Title,
		Description:  form.Description,
		Address:      form.Address,
		Price:        form.Price,
		SpaceType:    form.SpaceType,
		Availability: form.Availability,
		EVCharging:   form.EVCharging,
		Covered:      form.Covered,
		Instructions: form.Instructions,
		CreatedAt:    s.now(),
	}

	listings = append(listings, listing)
	if err := s.repo.Save(ctx, listings); err != nil {
		return nil, err
	}

	if ownerEmail != "" {
		if err := s.notifier.ListingCreated(ctx, ownerEmail, listing); err != nil {
			log.Printf("Listing %s created, but the confirmation to %s failed: %v", listing.ID, ownerEmail, err)
		}
	}
	return &listing, nil
}

func (s *ListingService) List(ctx context.Context) ([]entities.Listing, error) {
	return s.repo.List(ctx)
}

// Delete removes the listing with the given id and keeps the others in order.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	listings, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	remaining := make([]entities.Listing, 0, len(listings))
	for _, l := range listings {
		if l.ID != id {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) == len(listings) {
		return ErrListingNotFound
	}
	return s.repo.Save(ctx, remaining)
}

func validateListingForm(form *entities.ListingForm) error {
	form.Title = strings.TrimSpace(form.Title)
	form.Address = strings.TrimSpace(form.Address)
	form.Price = strings.TrimSpace(form.Price)
	form.SpaceType = strings.ToLower(strings.TrimSpace(form.SpaceType))
	form.Availability = strings.ToLower(strings.TrimSpace(form.Availability))

	switch {
	case form.Title == "":
		return requiredField("title")
	case form.Address == "":
		return requiredField("address")
	case form.Price == "":
		return requiredField("price")
	}

	if form.SpaceType != "" && !spaceTypes[form.SpaceType] {
		return &ValidationError{Field: "spaceType", Message: "Unknown space type"}
	}
	if form.Availability == "" {
		form.Availability = defaultAvailability
	}
	if !availabilities[form.Availability] {
		return &ValidationError{Field: "availability", Message: "Unknown availability"}
	}
	return nil
}
