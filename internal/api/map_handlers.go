package api

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"parknest/internal/entities"
	apperrors "parknest/internal/errors"
	"parknest/internal/mapview"
	"parknest/internal/service"
	ws "parknest/internal/websocket"
)

// newUpgrader accepts the same origins the CORS policy allows. Requests
// without an Origin header and same-host pages are always accepted.
func newUpgrader(origins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll || allowed[strings.ToLower(origin)] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

func (h *Handler) newSurface(variant string, center *entities.Coordinates, zoom int) (*mapview.Surface, error) {
	var renderer mapview.Renderer
	switch variant {
	case "", mapview.VariantTile:
		renderer = mapview.NewTileRenderer(h.tileURL)
	case mapview.VariantStatic:
		renderer = mapview.NewStaticRenderer(service.MockSpots())
	default:
		return nil, apperrors.ErrBadRequest("unknown map variant " + strconv.Quote(variant))
	}

	var opts []mapview.Option
	if center != nil {
		opts = append(opts, mapview.WithCenter(*center))
	}
	if zoom != 0 {
		opts = append(opts, mapview.WithZoom(zoom))
	}
	return mapview.NewSurface(renderer, opts...), nil
}

func (h *Handler) surfaceFromQuery(r *http.Request) (*mapview.Surface, error) {
	q := r.URL.Query()
	var center *entities.Coordinates
	if q.Has("lat") || q.Has("lng") {
		lat, err := queryFloat(r, "lat", mapview.DefaultCenter.Lat)
		if err != nil {
			return nil, err
		}
		lng, err := queryFloat(r, "lng", mapview.DefaultCenter.Lng)
		if err != nil {
			return nil, err
		}
		center = &entities.Coordinates{Lat: lat, Lng: lng}
	}
	zoom := 0
	if raw := q.Get("zoom"); raw != "" {
		z, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.ErrBadRequest("invalid zoom")
		}
		zoom = z
	}
	return h.newSurface(q.Get("variant"), center, zoom)
}

func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	surface, err := h.surfaceFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, surface.View())
}

// SelectLocation mounts a surface for the duration of one click, then runs
// the spot search for the selected point.
func (h *Handler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Center != nil && !mapview.Finite(*req.Center) {
		respondError(w, apperrors.ErrBadRequest("invalid center"))
		return
	}
	if req.Click.LatLng != nil && !mapview.Finite(*req.Click.LatLng) {
		respondError(w, apperrors.ErrBadRequest("invalid click"))
		return
	}
	surface, err := h.newSurface(req.Variant, req.Center, req.Zoom)
	if err != nil {
		respondError(w, err)
		return
	}

	var selected entities.Coordinates
	unmount := surface.Mount(func(lat, lng float64) {
		selected = entities.Coordinates{Lat: lat, Lng: lng}
	})
	_, err = surface.Click(req.Click)
	unmount()
	if err != nil {
		respondError(w, err)
		return
	}

	spots, ok := h.provider.FetchParkingSpots(r.Context(), selected.Lat, selected.Lng, req.Radius)
	resp := SelectResponse{Location: selected, Spots: spots, Success: ok}
	if !ok {
		resp.Error = h.provider.Error()
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// MapSocket upgrades to the live map channel. The surface stays mounted for
// as long as the connection is open.
func (h *Handler) MapSocket(w http.ResponseWriter, r *http.Request) {
	surface, err := h.surfaceFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	session := ws.NewSession(conn, surface, h.provider)
	h.hub.Register(session)
	defer h.hub.Unregister(session)
	session.Run(r.Context())
}
