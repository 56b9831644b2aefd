package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"parknest/internal/auth"
	apperrors "parknest/internal/errors"
	"parknest/internal/repository"
	"parknest/internal/service"
	"parknest/internal/storage"
	ws "parknest/internal/websocket"
)

// Handler serves every profile from one shared store. Each request works on
// the caller's own key namespace.
type Handler struct {
	store    storage.Store
	notifier service.Notifier
	provider *service.DataProvider
	hub      *ws.Hub
	tileURL  string
	upgrader *websocket.Upgrader
}

func NewHandler(store storage.Store, notifier service.Notifier, provider *service.DataProvider, hub *ws.Hub, tileURL string) *Handler {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	if hub == nil {
		hub = ws.NewHub()
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		provider: provider,
		hub:      hub,
		tileURL:  tileURL,
		upgrader: newUpgrader(nil),
	}
}

type profile struct {
	sessions *repository.SessionRepository
	listings *repository.ListingRepository
}

func (h *Handler) profile(r *http.Request) profile {
	store := storage.NewScoped(h.store, auth.ProfileID(r.Context()))
	return profile{
		sessions: repository.NewSessionRepository(store),
		listings: repository.NewListingRepository(store),
	}
}

func (h *Handler) sessionStore(r *http.Request) (*service.SessionStore, error) {
	return service.NewSessionStore(r.Context(), h.profile(r).sessions, h.notifier)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", LiveMaps: h.hub.ClientCount()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding %d response: %v", status, err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	apperrors.Write(w, err)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.ErrBadRequest("Invalid request body")
	}
	return nil
}
