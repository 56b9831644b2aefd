package service

import (
	"context"
	"log"
	"sync"
	"time"

	"parknest/internal/entities"
)

const (
	DefaultMockLatency  = time.Second
	DefaultSearchRadius = 1000.0

	mockBookingID = "mock-booking-id"
	mockSpotID    = "mock-spot-id"
)

// DataProvider stands in for the marketplace backend. Every call waits a
// fixed latency and returns canned data.
//
// All calls share one loading flag and one error. Overlapping calls race on
// them and the last one to finish wins.
type DataProvider struct {
	latency time.Duration

	mu      sync.Mutex
	loading bool
	err     string
}

func NewDataProvider(latency time.Duration) *DataProvider {
	if latency < 0 {
		latency = 0
	}
	return &DataProvider{latency: latency}
}

func (p *DataProvider) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Error returns the message of the last failed call, or "" when the most
// recent call started cleanly.
func (p *DataProvider) Error() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *DataProvider) FetchParkingSpots(ctx context.Context, lat, lng, radius float64) ([]entities.ParkingSpot, bool) {
	if radius <= 0 {
		radius = DefaultSearchRadius
	}
	p.begin()
	defer p.end()

	log.Printf("Fetching parking spots near %f, %f within %.0fm", lat, lng, radius)
	if err := p.wait(ctx); err != nil {
		p.fail("Failed to fetch parking spots")
		return []entities.ParkingSpot{}, false
	}
	return []entities.ParkingSpot{}, true
}

func (p *DataProvider) CreateBooking(ctx context.Context, booking entities.BookingRequest) entities.BookingResult {
	p.begin()
	defer p.end()

	log.Printf("Creating booking for spot %s (%s - %s)", booking.SpotID, booking.StartTime, booking.EndTime)
	if err := p.wait(ctx); err != nil {
		p.fail("Failed to create booking")
		return entities.BookingResult{Success: false, Error: "Failed to create booking"}
	}
	return entities.BookingResult{Success: true, BookingID: mockBookingID}
}

func (p *DataProvider) FetchUserBookings(ctx context.Context, userID string) ([]entities.Booking, bool) {
	p.begin()
	defer p.end()

	log.Printf("Fetching bookings for user %s", userID)
	if err := p.wait(ctx); err != nil {
		p.fail("Failed to fetch bookings")
		return []entities.Booking{}, false
	}
	return []entities.Booking{}, true
}

func (p *DataProvider) CreateParkingSpot(ctx context.Context, spot entities.ParkingSpot) entities.SpotResult {
	p.begin()
	defer p.end()

	log.Printf("Creating parking spot %q at %s", spot.Name, spot.Address)
	if err := p.wait(ctx); err != nil {
		p.fail("Failed to create parking spot")
		return entities.SpotResult{Success: false, Error: "Failed to create parking spot"}
	}
	return entities.SpotResult{Success: true, SpotID: mockSpotID}
}

func (p *DataProvider) begin() {
	p.mu.Lock()
	p.loading = true
	p.err = ""
	p.mu.Unlock()
}

func (p *DataProvider) end() {
	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
}

func (p *DataProvider) fail(msg string) {
	p.mu.Lock()
	p.err = msg
	p.mu.Unlock()
}

func (p *DataProvider) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.latency == 0 {
		return nil
	}
	timer := time.NewTimer(p.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MockSpots is the hard-coded spot catalogue shown before a real backend
// exists.
func MockSpots() []entities.ParkingSpot {
	return []entities.ParkingSpot{
		{
			ID:          "1",
			Name:        "Downtown Garage A",
			Address:     "151 W 46th St, New York, NY",
			Price:       8,
			Coordinates: entities.Coordinates{Lat: 40.7580, Lng: -73.9855},
			Available:   true,
			Type:        entities.SpotCovered,
			EVCharging:  true,
			OwnerID:     "owner-1",
		},
		{
			ID:          "2",
			Name:        "Private Driveway",
			Address:     "322 W 52nd St, New York, NY",
			Price:       6,
			Coordinates: entities.Coordinates{Lat: 40.7614, Lng: -73.9776},
			Available:   true,
			Type:        entities.SpotUncovered,
			EVCharging:  false,
			OwnerID:     "owner-2",
		},
		{
			ID:          "3",
			Name:        "Covered Lot B",
			Address:     "1 Penn Plaza, New York, NY",
			Price:       12,
			Coordinates: entities.Coordinates{Lat: 40.7505, Lng: -73.9934},
			Available:   false,
			Type:        entities.SpotCovered,
			EVCharging:  true,
			OwnerID:     "owner-3",
		},
	}
}

// MockBookings is the hard-coded booking history shown on the dashboard.
func MockBookings() []entities.Booking {
	return []entities.Booking{
		{
			ID:         "1",
			SpotID:     "1",
			SpotName:   "Downtown Garage A",
			Date:       "2024-01-15",
			Duration:   "2 hours",
			Hours:      2,
			TotalPrice: 16,
			Status:     entities.BookingConfirmed,
		},
		{
			ID:         "2",
			SpotID:     "2",
			SpotName:   "Private Driveway",
			Date:       "2024-01-12",
			Duration:   "4 hours",
			Hours:      4,
			TotalPrice: 24,
			Status:     entities.BookingCompleted,
		},
	}
}
