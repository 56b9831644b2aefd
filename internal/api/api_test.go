package api

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parknest/internal/auth"
	"parknest/internal/entities"
	"parknest/internal/mapview"
	"parknest/internal/service"
	"parknest/internal/storage"
)

type testEnv struct {
	router   http.Handler
	profiles *auth.Profiles
	store    *storage.MemoryStore
}

func setupTestRouter(t *testing.T, corsOrigins ...string) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	profiles := auth.NewProfiles("test-secret")
	h := NewHandler(store, nil, service.NewDataProvider(0), nil, "")
	return &testEnv{router: NewRouter(h, profiles, corsOrigins), profiles: profiles, store: store}
}

func (e *testEnv) newProfile(t *testing.T) string {
	t.Helper()
	_, token, err := e.profiles.Issue()
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := setupTestRouter(t)
	rec := env.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestProfileIssuedOnFirstRequest(t *testing.T) {
	env := setupTestRouter(t)
	rec := env.do(t, "", http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Profile-Token"))
	assert.False(t, decode[entities.SessionResponse](t, rec).IsAuthenticated)
}

func TestLoginAsOwnerThenDashboard(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodPost, "/api/session/login", entities.LoginForm{
		Email: "a@b.com", Password: "x", UserType: entities.UserTypeOwner,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[entities.SessionResponse](t, rec)
	assert.True(t, login.IsAuthenticated)
	assert.Equal(t, "/dashboard", login.Redirect)
	assert.Equal(t, "Welcome back! Redirecting to your owner dashboard...", login.Message)

	rec = env.do(t, token, http.MethodGet, "/api/session", nil)
	session := decode[entities.SessionResponse](t, rec)
	require.NotNil(t, session.Session)
	assert.Equal(t, entities.Session{Email: "a@b.com", UserType: entities.UserTypeOwner}, *session.Session)

	rec = env.do(t, token, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[entities.Dashboard](t, rec)
	assert.Equal(t, "Space Owner", d.Badge)
	assert.Empty(t, d.Listings)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodPost, "/api/session/login", entities.LoginForm{Email: "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, token, http.MethodPost, "/api/session/login", entities.LoginForm{Email: "a@b.com", Password: "x", UserType: "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/session/login", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	bad := httptest.NewRecorder()
	env.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	assert.Equal(t, 0, env.store.Len())
}

func TestSignupAndLogout(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodPost, "/api/session/signup", entities.SignupForm{
		Name: "Ana", Email: "ana@b.com", Password: "p", ConfirmPassword: "q",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Passwords do not match", decode[map[string]string](t, rec)["error"])

	rec = env.do(t, token, http.MethodPost, "/api/session/signup", entities.SignupForm{
		Name: "Ana", Email: "ana@b.com", Password: "p", ConfirmPassword: "p", UserType: entities.UserTypeOwner,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ana", decode[entities.SessionResponse](t, rec).UserName)

	rec = env.do(t, token, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, "Ana", decode[entities.Dashboard](t, rec).UserName)

	rec = env.do(t, token, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[entities.SessionResponse](t, rec)
	assert.False(t, out.IsAuthenticated)
	assert.Equal(t, "/", out.Redirect)

	rec = env.do(t, token, http.MethodGet, "/api/session", nil)
	assert.False(t, decode[entities.SessionResponse](t, rec).IsAuthenticated)
}

func TestListingLifecycle(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodPost, "/api/listings", entities.ListingForm{Address: "123 Main St", Price: "8"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all required fields", decode[map[string]string](t, rec)["error"])

	rec = env.do(t, token, http.MethodPost, "/api/listings", entities.ListingForm{Title: "Driveway", Address: "123 Main St", Price: "8"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[ListingResponse](t, rec)
	require.NotNil(t, created.Listing)
	assert.Equal(t, "Your parking space has been listed successfully!", created.Message)

	rec = env.do(t, token, http.MethodGet, "/api/dashboard", nil)
	d := decode[entities.Dashboard](t, rec)
	require.Len(t, d.Listings, 1)
	assert.Equal(t, "Driveway", d.Listings[0].Title)
	assert.Equal(t, "123 Main St", d.Listings[0].Address)
	assert.Equal(t, "8", d.Listings[0].Price)

	rec = env.do(t, token, http.MethodDelete, "/api/listings/"+created.Listing.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, token, http.MethodDelete, "/api/listings/"+created.Listing.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, token, http.MethodGet, "/api/listings", nil)
	assert.Empty(t, decode[ListingsResponse](t, rec).Listings)
}

func TestProfilesAreIsolated(t *testing.T) {
	env := setupTestRouter(t)
	alice, bob := env.newProfile(t), env.newProfile(t)

	rec := env.do(t, alice, http.MethodPost, "/api/listings", entities.ListingForm{Title: "Driveway", Address: "123 Main St", Price: "8"})
	require.Equal(t, http.StatusCreated, rec.Code)
	env.do(t, alice, http.MethodPost, "/api/session/login", entities.LoginForm{Email: "a@b.com", Password: "x"})

	rec = env.do(t, bob, http.MethodGet, "/api/listings", nil)
	assert.Empty(t, decode[ListingsResponse](t, rec).Listings)
	rec = env.do(t, bob, http.MethodGet, "/api/session", nil)
	assert.False(t, decode[entities.SessionResponse](t, rec).IsAuthenticated)
}

func TestSpotsAndBookings(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodGet, "/api/spots", nil)
	assert.Len(t, decode[SpotsResponse](t, rec).Spots, 3)

	rec = env.do(t, token, http.MethodGet, "/api/spots/nearby?lat=40.75&lng=-73.98&radius=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nearby := decode[SpotsResponse](t, rec)
	assert.True(t, nearby.Success)
	assert.NotNil(t, nearby.Spots)
	assert.Empty(t, nearby.Spots)

	rec = env.do(t, token, http.MethodGet, "/api/spots/nearby?lat=40.75", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, token, http.MethodGet, "/api/spots/nearby?lat=north&lng=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, token, http.MethodPost, "/api/spots", entities.ParkingSpot{Name: "Driveway", Address: "1 Elm St", Price: 5})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "mock-spot-id", decode[entities.SpotResult](t, rec).SpotID)

	rec = env.do(t, token, http.MethodPost, "/api/bookings", entities.BookingRequest{SpotID: "1", TotalPrice: 16})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, entities.BookingResult{Success: true, BookingID: "mock-booking-id"}, decode[entities.BookingResult](t, rec))

	rec = env.do(t, token, http.MethodPost, "/api/bookings", entities.BookingRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, token, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[BookingsResponse](t, rec).Bookings)
}

func TestMapViews(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	rec := env.do(t, token, http.MethodGet, "/api/map", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tile := decode[mapview.View](t, rec)
	assert.Equal(t, mapview.VariantTile, tile.Variant)
	assert.Equal(t, mapview.DefaultCenter, tile.Center)
	assert.Equal(t, mapview.DefaultZoom, tile.Zoom)
	assert.Equal(t, mapview.DefaultAttribution, tile.Attribution)

	rec = env.do(t, token, http.MethodGet, "/api/map?variant=static&lat=1&lng=2&zoom=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	static := decode[mapview.View](t, rec)
	assert.Equal(t, entities.Coordinates{Lat: 1, Lng: 2}, static.Center)
	assert.Len(t, static.Pins, 3)

	rec = env.do(t, token, http.MethodGet, "/api/map?variant=satellite", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectLocation(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)
	pin := 2

	rec := env.do(t, token, http.MethodPost, "/api/map/select", SelectRequest{Variant: "static", Click: mapview.Click{Pin: &pin}})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SelectResponse](t, rec)
	assert.Equal(t, service.MockSpots()[2].Coordinates, resp.Location)
	assert.True(t, resp.Success)

	exact := entities.Coordinates{Lat: 40.7, Lng: -74.01}
	rec = env.do(t, token, http.MethodPost, "/api/map/select", SelectRequest{Click: mapview.Click{LatLng: &exact}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exact, decode[SelectResponse](t, rec).Location)

	missing := 7
	rec = env.do(t, token, http.MethodPost, "/api/map/select", SelectRequest{Variant: "static", Click: mapview.Click{Pin: &missing}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMapSocket(t *testing.T) {
	env := setupTestRouter(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+env.newProfile(t))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/map/ws?variant=static"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "map.view", msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "map.click", "payload": map[string]any{"pin": 0}}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "location.selected", msg.Type)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "spots.found", msg.Type)
}

func TestMap_RejectsNonFiniteCoordinates(t *testing.T) {
	env := setupTestRouter(t)
	token := env.newProfile(t)

	paths := []string{
		"/api/map?lat=NaN&lng=-73.98",
		"/api/map?lat=40.7&lng=Inf",
		"/api/map?lat=-Infinity&lng=1",
		"/api/map/ws?lat=NaN&lng=1",
		"/api/spots/nearby?lat=NaN&lng=-73.98",
		"/api/spots/nearby?lat=40.7&lng=-73.98&radius=Inf",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, token, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid")
		})
	}
}

func TestMapSocket_OriginFollowsCORS(t *testing.T) {
	env := setupTestRouter(t, "https://parknest.app")
	srv := httptest.NewServer(env.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/map/ws"

	dial := func(origin string) (*http.Response, error) {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+env.newProfile(t))
		if origin != "" {
			header.Set("Origin", origin)
		}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if conn != nil {
			conn.Close()
		}
		return resp, err
	}

	resp, err := dial("https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err = dial("https://parknest.app")
	assert.NoError(t, err)
	_, err = dial("")
	assert.NoError(t, err)
}

func TestRespondJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, map[string]float64{"lat": math.NaN()})
	assert.Contains(t, buf.String(), "Error encoding 200 response")
}
