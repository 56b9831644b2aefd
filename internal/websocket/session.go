// Package websocket runs the live map channel: one mounted map surface per
// connection, with every selected location answered by a spot search.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"parknest/internal/entities"
	"parknest/internal/mapview"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536

	DefaultSearchRadius = 1000
)

// SpotFinder looks up spots around a coordinate.
type SpotFinder interface {
	FetchParkingSpots(ctx context.Context, lat, lng, radius float64) ([]entities.ParkingSpot, bool)
}

// Session binds one connection to one map surface.
type Session struct {
	conn    *websocket.Conn
	surface *mapview.Surface
	finder  SpotFinder
	radius  float64
	send    chan []byte

	ctx      context.Context
	cancel   context.CancelFunc
	searches sync.WaitGroup
}

func NewSession(conn *websocket.Conn, surface *mapview.Surface, finder SpotFinder) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:    conn,
		surface: surface,
		finder:  finder,
		radius:  DefaultSearchRadius,
		send:    make(chan []byte, 256),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run mounts the surface, pumps messages until the connection ends, then
// unmounts. It blocks until every goroutine it started has finished.
func (s *Session) Run(parent context.Context) {
	stop := context.AfterFunc(parent, s.cancel)
	defer stop()
	defer s.cancel()

	unmount := s.surface.Mount(s.onLocation)

	written := make(chan struct{})
	go func() {
		defer close(written)
		s.writePump()
	}()

	// cancellation (server shutdown, Close) ends the read pump
	go func() {
		<-s.ctx.Done()
		s.conn.Close()
	}()

	s.enqueue(NewMessage(TypeMapView, s.surface.View()))
	s.readPump()

	unmount()
	s.cancel()
	s.searches.Wait()
	close(s.send)
	<-written
}

// Close ends the session from outside.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) onLocation(lat, lng float64) {
	s.enqueue(NewMessage(TypeLocationSelected, LocationPayload{Lat: lat, Lng: lng}))

	s.searches.Add(1)
	go func() {
		defer s.searches.Done()
		spots, ok := s.finder.FetchParkingSpots(s.ctx, lat, lng, s.radius)
		if s.ctx.Err() != nil {
			return
		}
		if !ok {
			s.enqueue(NewMessage(TypeError, ErrorPayload{Code: "search_failed", Message: "Failed to fetch parking spots"}))
			return
		}
		s.enqueue(NewMessage(TypeSpotsFound, SpotsPayload{
			Center: entities.Coordinates{Lat: lat, Lng: lng},
			Radius: s.radius,
			Spots:  spots,
		}))
	}()
}

func (s *Session) enqueue(m Message) {
	b, err := m.JSON()
	if err != nil {
		log.Printf("WebSocket encode error: %v", err)
		return
	}
	select {
	case s.send <- b:
	default:
		log.Printf("WebSocket send buffer full, dropping %s", m.Type)
	}
}

// writePump pumps queued messages to the WebSocket connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump handles client commands until the connection fails or closes.
func (s *Session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		s.handle(message)
	}
}

func (s *Session) handle(raw []byte) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		s.enqueue(NewMessage(TypeError, ErrorPayload{Code: "bad_message", Message: "message is not valid JSON"}))
		return
	}

	switch in.Type {
	case TypePing:
		s.enqueue(NewMessage(TypePong, nil))

	case TypeMapRefresh:
		s.enqueue(NewMessage(TypeMapView, s.surface.View()))

	case TypeMapClick:
		var click ClickPayload
		if err := json.Unmarshal(in.Payload, &click); err != nil {
			s.enqueue(NewMessage(TypeError, ErrorPayload{Code: "bad_payload", Message: "invalid click payload", OriginalType: string(in.Type)}))
			return
		}
		if _, err := s.surface.Click(click); err != nil {
			code := "click_failed"
			if errors.Is(err, mapview.ErrOutsideView) {
				code = "no_location"
			}
			s.enqueue(NewMessage(TypeError, ErrorPayload{Code: code, Message: err.Error(), OriginalType: string(in.Type)}))
		}

	default:
		s.enqueue(NewMessage(TypeError, ErrorPayload{Code: "unknown_type", Message: "unknown message type", OriginalType: string(in.Type)}))
	}
}
