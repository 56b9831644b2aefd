package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "parknest_profile"

	profileTTL = 365 * 24 * time.Hour
)

var ErrInvalidProfile = errors.New("invalid profile token")

type ctxKey struct{}

// Profiles issues and verifies the signed token that identifies a profile.
// A profile owns one key namespace, like a browser owns its local storage.
type Profiles struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewProfiles signs with secret. An empty secret gets a random one, which
// means profiles do not survive a restart.
func NewProfiles(secret string) *Profiles {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("profile secret: %v", err))
		}
		log.Printf("PROFILE_SECRET not set, profiles will reset on restart")
	}
	return &Profiles{secret: key, now: time.Now}
}

// SecureCookies marks issued cookies as HTTPS only.
func (p *Profiles) SecureCookies(secure bool) {
	p.secure = secure
}

// Issue returns a fresh profile id and its signed token.
func (p *Profiles) Issue() (id, token string, err error) {
	id = uuid.NewString()
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(profileTTL)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign profile token: %w", err)
	}
	return id, token, nil
}

// Verify returns the profile id carried by token.
func (p *Profiles) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidProfile
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidProfile
	}
	return claims.Subject, nil
}

// Middleware attaches the caller's profile id to the request context. The
// token is read from the profile cookie or a Bearer header; callers without a
// valid one get a new profile and a cookie for it.
func (p *Profiles) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := p.Verify(tokenFrom(r))
		if err != nil {
			var token string
			id, token, err = p.Issue()
			if err != nil {
				log.Printf("Error issuing profile: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				Expires:  p.now().Add(profileTTL),
				HttpOnly: true,
				Secure:   p.secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set("X-Profile-Token", token)
		}
		next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), id)))
	})
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ProfileID returns the profile attached by Middleware, or "".
func ProfileID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
