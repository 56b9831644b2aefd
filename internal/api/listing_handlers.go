package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"parknest/internal/entities"
	"parknest/internal/service"
)

func (h *Handler) listingService(p profile) *service.ListingService {
	return service.NewListingService(p.listings, h.notifier)
}

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService(h.profile(r)).List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ListingsResponse{Listings: listings})
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var form entities.ListingForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(w, err)
		return
	}

	p := h.profile(r)
	var ownerEmail string
	if session, err := p.sessions.Load(r.Context()); err == nil && session != nil {
		ownerEmail = session.Email
	}

	listing, err := h.listingService(p).Create(r.Context(), form, ownerEmail)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ListingResponse{
		Listing:  listing,
		Message:  "Your parking space has been listed successfully!",
		Redirect: DashboardPath,
	})
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.listingService(h.profile(r)).Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p := h.profile(r)
	dashboard, err := service.NewDashboardService(p.sessions, p.listings).Load(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}
