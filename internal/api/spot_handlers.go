package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"parknest/internal/entities"
	apperrors "parknest/internal/errors"
	"parknest/internal/service"
)

func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SpotsResponse{Spots: service.MockSpots(), Success: true})
}

func (h *Handler) NearbySpots(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("lat") || !r.URL.Query().Has("lng") {
		respondError(w, apperrors.ErrBadRequest("lat and lng are required"))
		return
	}
	lat, err := queryFloat(r, "lat", 0)
	if err != nil {
		respondError(w, err)
		return
	}
	lng, err := queryFloat(r, "lng", 0)
	if err != nil {
		respondError(w, err)
		return
	}
	radius, err := queryFloat(r, "radius", service.DefaultSearchRadius)
	if err != nil {
		respondError(w, err)
		return
	}

	spots, ok := h.provider.FetchParkingSpots(r.Context(), lat, lng, radius)
	if !ok {
		respondJSON(w, http.StatusServiceUnavailable, SpotsResponse{Spots: spots, Error: h.provider.Error()})
		return
	}
	respondJSON(w, http.StatusOK, SpotsResponse{Spots: spots, Success: true})
}

func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var spot entities.ParkingSpot
	if err := decodeJSON(r, &spot); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(spot.Name) == "" || strings.TrimSpace(spot.Address) == "" {
		respondError(w, &service.ValidationError{Field: "name", Message: "Please fill in all required fields"})
		return
	}

	result := h.provider.CreateParkingSpot(r.Context(), spot)
	if !result.Success {
		respondJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// CreateBooking only simulates the call; nothing is stored and the booking
// never shows up in any listing.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.SpotID) == "" {
		respondError(w, &service.ValidationError{Field: "spotId", Message: "Please fill in all required fields"})
		return
	}

	result := h.provider.CreateBooking(r.Context(), req)
	if !result.Success {
		respondJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	var userID string
	if session, err := h.profile(r).sessions.Load(r.Context()); err == nil && session != nil {
		userID = session.Email
	}

	bookings, ok := h.provider.FetchUserBookings(r.Context(), userID)
	if !ok {
		respondJSON(w, http.StatusServiceUnavailable, BookingsResponse{Bookings: bookings, Error: h.provider.Error()})
		return
	}
	respondJSON(w, http.StatusOK, BookingsResponse{Bookings: bookings, Success: true})
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.ErrBadRequest("invalid " + name)
	}
	return v, nil
}
