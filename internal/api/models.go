package api

import (
	"parknest/internal/entities"
	"parknest/internal/mapview"
)

// DashboardPath is where a client goes after logging in or listing a space.
const DashboardPath = "/dashboard"

type HealthResponse struct {
	Status   string `json:"status"`
	LiveMaps int    `json:"liveMaps"`
}

type ListingResponse struct {
	Listing  *entities.Listing `json:"listing"`
	Message  string            `json:"message"`
	Redirect string            `json:"redirect"`
}

type ListingsResponse struct {
	Listings []entities.Listing `json:"listings"`
}

type SpotsResponse struct {
	Spots   []entities.ParkingSpot `json:"spots"`
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
}

type BookingsResponse struct {
	Bookings []entities.Booking `json:"bookings"`
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
}

// SelectRequest is a one-shot map interaction: render the view described by
// Variant/Center/Zoom, apply Click and search around the result.
type SelectRequest struct {
	Variant string                `json:"variant"`
	Center  *entities.Coordinates `json:"center,omitempty"`
	Zoom    int                   `json:"zoom,omitempty"`
	Radius  float64               `json:"radius,omitempty"`
	Click   mapview.Click         `json:"click"`
}

type SelectResponse struct {
	Location entities.Coordinates   `json:"location"`
	Spots    []entities.ParkingSpot `json:"spots"`
	Success  bool                   `json:"success"`
	Error    string                 `json:"error,omitempty"`
}
