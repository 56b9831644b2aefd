package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"parknest/internal/auth"
)

// NewRouter wires every route. Everything under /api runs with a profile.
func NewRouter(h *Handler, profiles *auth.Profiles, corsOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(profiles.Middleware)

	// Session
	api.HandleFunc("/session", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/session/signup", h.Signup).Methods(http.MethodPost)
	api.HandleFunc("/session/logout", h.Logout).Methods(http.MethodPost)

	// Listings
	api.HandleFunc("/listings", h.ListListings).Methods(http.MethodGet)
	api.HandleFunc("/listings", h.CreateListing).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}", h.DeleteListing).Methods(http.MethodDelete)
	api.HandleFunc("/dashboard", h.GetDashboard).Methods(http.MethodGet)

	// Spots and bookings
	api.HandleFunc("/spots", h.ListSpots).Methods(http.MethodGet)
	api.HandleFunc("/spots", h.CreateSpot).Methods(http.MethodPost)
	api.HandleFunc("/spots/nearby", h.NearbySpots).Methods(http.MethodGet)
	api.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)

	// Map
	api.HandleFunc("/map", h.GetMap).Methods(http.MethodGet)
	api.HandleFunc("/map/select", h.SelectLocation).Methods(http.MethodPost)
	api.HandleFunc("/map/ws", h.MapSocket).Methods(http.MethodGet)

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	h.upgrader = newUpgrader(corsOrigins)
	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"X-Profile-Token"}),
		handlers.AllowCredentials(),
	)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(cors(r))
}
