package service

import (
	"context"

	"parknest/internal/entities"
	"parknest/internal/repository"
)

const (
	BadgeOwner  = "Space Owner"
	BadgeRenter = "Renter"

	defaultUserName = "User"
)

type DashboardService struct {
	sessions *repository.SessionRepository
	listings *repository.ListingRepository
	bookings func() []entities.Booking
}

func NewDashboardService(sessions *repository.SessionRepository, listings *repository.ListingRepository) *DashboardService {
	return &DashboardService{
		sessions: sessions,
		listings: listings,
		bookings: MockBookings,
	}
}

// Load re-reads everything the dashboard shows from the store.
func (s *DashboardService) Load(ctx context.Context) (*entities.Dashboard, error) {
	rawType, ok, err := s.sessions.UserType(ctx)
	if err != nil {
		return nil, err
	}
	userType := entities.UserType(rawType)
	if !ok || !userType.Valid() {
		userType = entities.UserTypeRenter
	}

	name, ok, err := s.sessions.UserName(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || name == "" {
		name = defaultUserName
	}

	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings := s.bookings()

	return &entities.Dashboard{
		UserName: name,
		UserType: userType,
		Badge:    Badge(userType),
		Listings: listings,
		Bookings: bookings,
		Stats:    computeStats(userType, listings, bookings),
	}, nil
}

func Badge(userType entities.UserType) string {
	if userType == entities.UserTypeOwner {
		return BadgeOwner
	}
	return BadgeRenter
}

func computeStats(userType entities.UserType, listings []entities.Listing, bookings []entities.Booking) entities.DashboardStats {
	stats := entities.DashboardStats{TotalBookings: len(bookings)}

	if userType == entities.UserTypeOwner {
		active := len(listings)
		var earnings float64
		for _, b := range bookings {
			if b.Status == entities.BookingCompleted {
				earnings += b.TotalPrice
			}
		}
		stats.ActiveListings = &active
		stats.TotalEarnings = &earnings
		return stats
	}

	var spent float64
	var hours int
	for _, b := range bookings {
		if b.Status == entities.BookingCancelled {
			continue
		}
		spent += b.TotalPrice
		hours += b.Hours
	}
	stats.TotalSpent = &spent
	stats.HoursParked = &hours
	return stats
}
