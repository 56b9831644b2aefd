package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"parknest/internal/entities"
	"parknest/internal/repository"
)

// LandingPath is where a client goes after logging out.
const LandingPath = "/"

// SessionStore is the pseudo-auth state of one profile. Credentials are never
// checked: any non-empty login succeeds.
type SessionStore struct {
	repo     *repository.SessionRepository
	notifier Notifier

	mu      sync.RWMutex
	current *entities.Session
}

// NewSessionStore reads the persisted session once. Missing or partial state
// starts the store logged out.
func NewSessionStore(ctx context.Context, repo *repository.SessionRepository, notifier Notifier) (*SessionStore, error) {
	current, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SessionStore{repo: repo, notifier: notifier, current: current}, nil
}

func (s *SessionStore) Login(ctx context.Context, email string, userType entities.UserType) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return requiredField("email")
	}
	if !userType.Valid() {
		return ErrInvalidUserType
	}

	session := entities.Session{Email: email, UserType: userType}
	if err := s.repo.Save(ctx, session); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()
	return nil
}

// LoginWithForm validates the login form and logs in. The password is
// required but never compared against anything.
func (s *SessionStore) LoginWithForm(ctx context.Context, form entities.LoginForm) error {
	if strings.TrimSpace(form.Email) == "" {
		return requiredField("email")
	}
	if form.Password == "" {
		return requiredField("password")
	}
	if form.UserType == "" {
		form.UserType = entities.UserTypeRenter
	}
	return s.Login(ctx, form.Email, form.UserType)
}

func (s *SessionStore) Signup(ctx context.Context, form entities.SignupForm) error {
	switch {
	case strings.TrimSpace(form.Name) == "":
		return requiredField("name")
	case strings.TrimSpace(form.Email) == "":
		return requiredField("email")
	case form.Password == "":
		return requiredField("password")
	case form.ConfirmPassword == "":
		return requiredField("confirmPassword")
	case form.Password != form.ConfirmPassword:
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	if form.UserType == "" {
		form.UserType = entities.UserTypeRenter
	}
	if !form.UserType.Valid() {
		return ErrInvalidUserType
	}

	name := strings.TrimSpace(form.Name)
	if err := s.repo.SaveUserName(ctx, name); err != nil {
		return err
	}
	if err := s.Login(ctx, form.Email, form.UserType); err != nil {
		return err
	}

	if err := s.notifier.Welcome(ctx, strings.TrimSpace(form.Email), name, form.UserType); err != nil {
		log.Printf("Welcome e-mail to %s failed: %v", form.Email, err)
	}
	return nil
}

// Logout clears the session and returns the path the caller should navigate to.
func (s *SessionStore) Logout(ctx context.Context) (string, error) {
	err := s.repo.Delete(ctx)

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err != nil {
		return LandingPath, fmt.Errorf("logout: %w", err)
	}
	return LandingPath, nil
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

func (s *SessionStore) Current() (entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return entities.Session{}, false
	}
	return *s.current, true
}

// UserName returns the name given at signup, if any.
func (s *SessionStore) UserName(ctx context.Context) (string, error) {
	name, _, err := s.repo.UserName(ctx)
	return name, err
}
