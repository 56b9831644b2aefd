// Package mapview implements the map a user clicks to pick a location. One
// Surface drives either renderer: live OpenStreetMap tiles or a static mock
// with pre-positioned pins.
package mapview

import (
	"errors"
	"math"
	"sync"

	"parknest/internal/entities"
)

var (
	DefaultCenter = entities.Coordinates{Lat: 40.7589, Lng: -73.9851}

	ErrNotMounted  = errors.New("map surface is not mounted")
	ErrOutsideView = errors.New("click does not resolve to a location")
)

const (
	DefaultZoom   = 13
	DefaultWidth  = 800
	DefaultHeight = 600
)

// LocationSelectFunc receives the coordinate the user picked.
type LocationSelectFunc func(lat, lng float64)

// Viewport is what the caller asks a renderer to draw.
type Viewport struct {
	Center entities.Coordinates `json:"center"`
	Zoom   int                  `json:"zoom"`
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
}

// Click is a user interaction with a rendered view. Tile views read LatLng
// (already resolved by the client) or the X/Y pixel offset from the top-left
// corner; static views read Pin.
type Click struct {
	X      float64               `json:"x"`
	Y      float64               `json:"y"`
	LatLng *entities.Coordinates `json:"latlng,omitempty"`
	Pin    *int                  `json:"pin,omitempty"`
}

// Renderer is the strategy behind a Surface.
type Renderer interface {
	Variant() string
	Render(vp Viewport) View
	Resolve(vp Viewport, click Click) (entities.Coordinates, error)
}

// View is the renderer output handed to clients.
type View struct {
	Variant     string               `json:"variant"`
	Center      entities.Coordinates `json:"center"`
	Zoom        int                  `json:"zoom"`
	Width       int                  `json:"width"`
	Height      int                  `json:"height"`
	TileURL     string               `json:"tileUrl,omitempty"`
	Attribution string               `json:"attribution,omitempty"`
	Bounds      *Bounds              `json:"bounds,omitempty"`
	Tiles       []Tile               `json:"tiles,omitempty"`
	Markers     []Marker             `json:"markers,omitempty"`
	Pins        []Pin                `json:"pins,omitempty"`
}

type Marker struct {
	Position entities.Coordinates `json:"position"`
	Popup    string               `json:"popup"`
}

type Option func(*Viewport)

func WithCenter(c entities.Coordinates) Option {
	return func(vp *Viewport) { vp.Center = c }
}

func WithZoom(zoom int) Option {
	return func(vp *Viewport) {
		if zoom >= MinZoom && zoom <= MaxZoom {
			vp.Zoom = zoom
		}
	}
}

func WithSize(width, height int) Option {
	return func(vp *Viewport) {
		if width > 0 && height > 0 {
			vp.Width, vp.Height = width, height
		}
	}
}

// Surface reports clicked locations to the callback attached with Mount.
type Surface struct {
	renderer Renderer
	viewport Viewport

	mu      sync.RWMutex
	onClick LocationSelectFunc
	mountID uint64
}

func NewSurface(r Renderer, opts ...Option) *Surface {
	vp := Viewport{Center: DefaultCenter, Zoom: DefaultZoom, Width: DefaultWidth, Height: DefaultHeight}
	for _, opt := range opts {
		opt(&vp)
	}
	return &Surface{renderer: r, viewport: vp}
}

func (s *Surface) Viewport() Viewport {
	return s.viewport
}

func (s *Surface) View() View {
	return s.renderer.Render(s.viewport)
}

// Mount attaches fn and returns the function that detaches it. Detaching
// waits for a callback already running and is safe to call more than once.
// A later Mount replaces the earlier callback; the earlier detach then does
// nothing. fn must not detach the surface itself.
func (s *Surface) Mount(fn LocationSelectFunc) (unmount func()) {
	s.mu.Lock()
	s.mountID++
	id := s.mountID
	s.onClick = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.mountID == id {
				s.onClick = nil
			}
			s.mu.Unlock()
		})
	}
}

func (s *Surface) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onClick != nil
}

// Click resolves the interaction and hands the coordinate to the mounted
// callback. The lock is held while the callback runs so that a detach never
// returns while a callback is still in flight.
func (s *Surface) Click(c Click) (entities.Coordinates, error) {
	if c.LatLng != nil && !Finite(*c.LatLng) {
		return entities.Coordinates{}, ErrOutsideView
	}
	if !finite(c.X) || !finite(c.Y) {
		return entities.Coordinates{}, ErrOutsideView
	}
	loc, err := s.renderer.Resolve(s.viewport, c)
	if err != nil {
		return entities.Coordinates{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.onClick == nil {
		return entities.Coordinates{}, ErrNotMounted
	}
	s.onClick(loc.Lat, loc.Lng)
	return loc, nil
}

// Finite reports whether both parts of c are real numbers.
func Finite(c entities.Coordinates) bool {
	return finite(c.Lat) && finite(c.Lng)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
