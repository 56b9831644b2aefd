package storage

import "context"

// Scoped confines a Store to the keys of one profile.
type Scoped struct {
	base   Store
	prefix string
}

func NewScoped(base Store, profileID string) *Scoped {
	return &Scoped{base: base, prefix: ProfileKey(profileID, "")}
}

// ProfileKey is the physical key a profile's logical key is stored under.
func ProfileKey(profileID, key string) string {
	return "profile:" + profileID + ":" + key
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.base.Set(ctx, s.prefix+key, value)
}

func (s *Scoped) Clear(ctx context.Context, key string) error {
	return s.base.Clear(ctx, s.prefix+key)
}
