package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parknest/internal/db"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "userEmail", "a@b.com"))
	v, ok, err := s.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)

	require.NoError(t, s.Set(ctx, "userEmail", "c@d.com"))
	v, _, err = s.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.Equal(t, "c@d.com", v)

	require.NoError(t, s.Clear(ctx, "userEmail"))
	_, ok, err = s.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing a missing key is not an error
	require.NoError(t, s.Clear(ctx, "userEmail"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLStore_SQLite(t *testing.T) {
	conn, err := db.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	exerciseStore(t, NewSQLStore(conn, "sqlite3"))
}

func TestSQLStore_Rebind(t *testing.T) {
	pg := &SQLStore{numbered: true}
	assert.Equal(t, "SELECT value FROM kv_entries WHERE key = $1 AND x = $2",
		pg.rebind("SELECT value FROM kv_entries WHERE key = ? AND x = ?"))

	lite := &SQLStore{}
	assert.Equal(t, "DELETE FROM kv_entries WHERE key = ?", lite.rebind("DELETE FROM kv_entries WHERE key = ?"))
}

type countingStore struct {
	*MemoryStore
	gets   int
	failOn string
}

func (c *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	c.gets++
	return c.MemoryStore.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	if key == c.failOn {
		return errors.New("backend down")
	}
	return c.MemoryStore.Set(ctx, key, value)
}

// gatedStore parks the first Get after it has read the backend, until
// release is closed.
type gatedStore struct {
	*MemoryStore
	gated   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := g.MemoryStore.Get(ctx, key)
	if g.gated.CompareAndSwap(false, true) {
		close(g.entered)
		<-g.release
	}
	return v, ok, err
}

func newCached(t *testing.T, backend Store, size int) *CachedStore {
	t.Helper()
	s, err := NewCachedStore(backend, size)
	require.NoError(t, err)
	return s
}

func TestCachedStore(t *testing.T) {
	exerciseStore(t, newCached(t, NewMemoryStore(), DefaultCacheSize))
}

func TestNewCachedStore_RejectsZeroSize(t *testing.T) {
	_, err := NewCachedStore(NewMemoryStore(), 0)
	assert.Error(t, err)
}

func TestCachedStore_ServesReadsFromCache(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{MemoryStore: NewMemoryStore()}
	s := newCached(t, backend, DefaultCacheSize)

	require.NoError(t, s.Set(ctx, "userType", "owner"))
	for i := 0; i < 3; i++ {
		v, ok, err := s.Get(ctx, "userType")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "owner", v)
	}
	assert.Equal(t, 1, backend.gets)

	// misses are cached too
	_, _, _ = s.Get(ctx, "userName")
	_, _, _ = s.Get(ctx, "userName")
	assert.Equal(t, 2, backend.gets)
}

func TestCachedStore_ReadRacingWriteKeepsNewValue(t *testing.T) {
	ctx := context.Background()
	backend := newGatedStore()
	require.NoError(t, backend.Set(ctx, "userListings", "v1"))
	s := newCached(t, backend, DefaultCacheSize)

	var wg sync.WaitGroup
	wg.Add(1)
	var early string
	go func() {
		defer wg.Done()
		early, _, _ = s.Get(ctx, "userListings")
	}()

	<-backend.entered
	require.NoError(t, s.Set(ctx, "userListings", "v2"))
	close(backend.release)
	wg.Wait()
	assert.Equal(t, "v1", early)

	v, ok, err := s.Get(ctx, "userListings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestCachedStore_ReadRacingClearKeepsAbsence(t *testing.T) {
	ctx := context.Background()
	backend := newGatedStore()
	require.NoError(t, backend.Set(ctx, "userEmail", "a@b.com"))
	s := newCached(t, backend, DefaultCacheSize)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = s.Get(ctx, "userEmail")
	}()

	<-backend.entered
	require.NoError(t, s.Clear(ctx, "userEmail"))
	close(backend.release)
	<-done

	_, ok, err := s.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedStore_ConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s := newCached(t, NewMemoryStore(), 8)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Set(ctx, "k"+strconv.Itoa(j%4), strconv.Itoa(i))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _, _ = s.Get(ctx, "k"+strconv.Itoa(j%4))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.Set(ctx, "k0", "final"))
	v, _, err := s.Get(ctx, "k0")
	require.NoError(t, err)
	assert.Equal(t, "final", v)
}

func TestCachedStore_BoundedSize(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{MemoryStore: NewMemoryStore()}
	s := newCached(t, backend, 2)

	for _, k := range []string{"a", "b", "c"} {
		_, _, _ = s.Get(ctx, k)
	}
	assert.Equal(t, 2, s.Invalidate())
}

func TestCachedStore_InvalidateSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	s := newCached(t, backend, DefaultCacheSize)

	require.NoError(t, s.Set(ctx, "userName", "Ana"))
	v, _, _ := s.Get(ctx, "userName")
	assert.Equal(t, "Ana", v)

	require.NoError(t, backend.Set(ctx, "userName", "Bea"))
	v, _, _ = s.Get(ctx, "userName")
	assert.Equal(t, "Ana", v)

	assert.Equal(t, 1, s.Invalidate())
	v, _, _ = s.Get(ctx, "userName")
	assert.Equal(t, "Bea", v)
}

func TestCachedStore_FailedWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{MemoryStore: NewMemoryStore(), failOn: "userListings"}
	s := newCached(t, backend, DefaultCacheSize)

	err := s.Set(ctx, "userListings", "[]")
	require.Error(t, err)

	_, ok, err := s.Get(ctx, "userListings")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, backend.gets)
}

func TestScoped_IsolatesProfiles(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := NewScoped(base, "alpha")
	b := NewScoped(base, "beta")

	require.NoError(t, a.Set(ctx, "userEmail", "a@b.com"))

	_, ok, err := b.Get(ctx, "userEmail")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := base.Get(ctx, ProfileKey("alpha", "userEmail"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)
	assert.Equal(t, "profile:alpha:userEmail", ProfileKey("alpha", "userEmail"))

	require.NoError(t, b.Clear(ctx, "userEmail"))
	assert.Equal(t, 1, base.Len())
}
