package repository

import (
	"context"
	"fmt"

	"parknest/internal/entities"
	"parknest/internal/storage"
)

const (
	KeyUserEmail    = "userEmail"
	KeyUserType     = "userType"
	KeyUserName     = "userName"
	KeyUserListings = "userListings"
)

type SessionRepository struct {
	Store storage.Store
}

func NewSessionRepository(store storage.Store) *SessionRepository {
	return &SessionRepository{Store: store}
}

// Load returns the persisted session, or nil when either key is missing.
func (r *SessionRepository) Load(ctx context.Context) (*entities.Session, error) {
	email, hasEmail, err := r.Store.Get(ctx, KeyUserEmail)
	if err != nil {
		return nil, fmt.Errorf("error reading session email: %w", err)
	}
	userType, hasType, err := r.Store.Get(ctx, KeyUserType)
	if err != nil {
		return nil, fmt.Errorf("error reading session type: %w", err)
	}
	if !hasEmail || !hasType || email == "" || userType == "" {
		return nil, nil
	}
	return &entities.Session{Email: email, UserType: entities.UserType(userType)}, nil
}

// Save writes both session keys. If the second write fails the first one is
// undone so the keys never disagree.
func (r *SessionRepository) Save(ctx context.Context, s entities.Session) error {
	if err := r.Store.Set(ctx, KeyUserEmail, s.Email); err != nil {
		return fmt.Errorf("error saving session email: %w", err)
	}
	if err := r.Store.Set(ctx, KeyUserType, string(s.UserType)); err != nil {
		_ = r.Store.Clear(ctx, KeyUserEmail)
		return fmt.Errorf("error saving session type: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context) error {
	errEmail := r.Store.Clear(ctx, KeyUserEmail)
	errType := r.Store.Clear(ctx, KeyUserType)
	if errEmail != nil {
		return fmt.Errorf("error clearing session email: %w", errEmail)
	}
	if errType != nil {
		return fmt.Errorf("error clearing session type: %w", errType)
	}
	return nil
}

// UserType returns the raw persisted user type, if any.
func (r *SessionRepository) UserType(ctx context.Context) (string, bool, error) {
	return r.Store.Get(ctx, KeyUserType)
}

func (r *SessionRepository) UserName(ctx context.Context) (string, bool, error) {
	return r.Store.Get(ctx, KeyUserName)
}

func (r *SessionRepository) SaveUserName(ctx context.Context, name string) error {
	if err := r.Store.Set(ctx, KeyUserName, name); err != nil {
		return fmt.Errorf("error saving user name: %w", err)
	}
	return nil
}
