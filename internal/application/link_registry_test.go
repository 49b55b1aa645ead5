package application

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcdiscord/internal/models"
	"mcdiscord/internal/repository"
)

var (
	steve = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	alex  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newTestRegistry(t *testing.T, store *memStore, cfg RegistryConfig) *LinkRegistry {
	t.Helper()
	r, err := NewLinkRegistry(store, cfg, nopLogger{})
	require.NoError(t, err)
	return r
}

func TestGenerateCode(t *testing.T) {
	t.Run("code is six digits", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		for i := 0; i < 200; i++ {
			code, err := r.GenerateCode(uuid.New())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, code, 100000)
			assert.LessOrEqual(t, code, 999999)
		}
	})

	t.Run("same player gets same code", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		first, err := r.GenerateCode(steve)
		require.NoError(t, err)
		second, err := r.GenerateCode(steve)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, r.PendingCount())
	})

	t.Run("collisions are retried", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		draws := []int{0, 0, 0, 7}
		r.randInt = func(int) int {
			v := draws[0]
			draws = draws[1:]
			return v
		}

		c1, err := r.GenerateCode(steve)
		require.NoError(t, err)
		c2, err := r.GenerateCode(alex)
		require.NoError(t, err)

		assert.Equal(t, 100000, c1)
		assert.Equal(t, 100007, c2)
		assert.Empty(t, draws)
	})

	t.Run("exhausted after bounded retries", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		calls := 0
		r.randInt = func(int) int {
			calls++
			return 42
		}

		_, err := r.GenerateCode(steve)
		require.NoError(t, err)

		_, err = r.GenerateCode(alex)
		assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
		assert.Equal(t, 1+maxCodeAttempts, calls)
		_, pending := r.PendingCode(alex)
		assert.False(t, pending)
	})

	t.Run("concurrent players get distinct codes", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		const players = 500

		var wg sync.WaitGroup
		codes := make([]int, players)
		for i := 0; i < players; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				code, err := r.GenerateCode(uuid.New())
				assert.NoError(t, err)
				codes[i] = code
			}(i)
		}
		wg.Wait()

		seen := make(map[int]struct{}, players)
		for _, c := range codes {
			_, dup := seen[c]
			assert.False(t, dup, "code %d issued twice", c)
			seen[c] = struct{}{}
		}
		assert.Equal(t, players, r.PendingCount())
	})
}

func TestLinkAccount(t *testing.T) {
	t.Run("unknown code changes nothing", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		code, err := r.GenerateCode(steve)
		require.NoError(t, err)

		unknown := code + 1
		if unknown > 999999 {
			unknown = 100000
		}
		pair := r.LinkAccount(555, unknown)

		assert.True(t, pair.Empty())
		assert.Empty(t, r.Links())
		assert.Equal(t, 1, r.PendingCount())
	})

	t.Run("known code is consumed", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		code, err := r.GenerateCode(steve)
		require.NoError(t, err)

		pair := r.LinkAccount(555, code)
		require.False(t, pair.Empty())
		assert.Equal(t, models.NewUserPair(555, steve), pair)
		assert.Equal(t, map[int64]uuid.UUID{555: steve}, r.Links())
		assert.Zero(t, r.PendingCount())

		again := r.LinkAccount(666, code)
		assert.True(t, again.Empty(), "a code links at most once")
	})

	t.Run("new code after link", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		draws := 0
		r.randInt = func(n int) int {
			draws++
			return draws
		}

		code, err := r.GenerateCode(steve)
		require.NoError(t, err)
		r.LinkAccount(555, code)

		next, err := r.GenerateCode(steve)
		require.NoError(t, err)
		assert.Equal(t, 2, draws, "a fresh code is drawn once the old one is consumed")
		assert.NotEqual(t, code, next)

		pending, ok := r.PendingCode(steve)
		assert.True(t, ok)
		assert.Equal(t, next, pending)
	})

	t.Run("user relink overwrites", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		c1, _ := r.GenerateCode(steve)
		r.LinkAccount(555, c1)
		c2, _ := r.GenerateCode(alex)
		pair := r.LinkAccount(555, c2)

		assert.Equal(t, models.NewUserPair(555, alex), pair)
		assert.False(t, r.IsLinked(steve))
		assert.True(t, r.IsLinked(alex))
		assert.Len(t, r.Links(), 1)
	})

	t.Run("player moves to new user", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		c1, _ := r.GenerateCode(steve)
		r.LinkAccount(555, c1)
		c2, _ := r.GenerateCode(steve)
		r.LinkAccount(666, c2)

		assert.False(t, r.IsUserLinked(555))
		assert.Equal(t, models.NewUserPair(666, steve), r.LookupByUUID(steve))
		assert.Len(t, r.Links(), 1)
	})

	t.Run("concurrent consumers link once", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		code, err := r.GenerateCode(steve)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0
		for i := int64(0); i < 50; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				if !r.LinkAccount(userID, code).Empty() {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(1000 + i)
		}
		wg.Wait()

		assert.Equal(t, 1, wins)
		assert.Len(t, r.Links(), 1)
	})
}

func TestCodeTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(t, newMemStore(), RegistryConfig{CodeTTL: 10 * time.Minute})
	r.now = func() time.Time { return now }

	code, err := r.GenerateCode(steve)
	require.NoError(t, err)
	stale, err := r.GenerateCode(alex)
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	again, err := r.GenerateCode(steve)
	require.NoError(t, err)
	assert.Equal(t, code, again)

	now = now.Add(time.Minute)
	_, pending := r.PendingCode(steve)
	assert.False(t, pending)
	assert.True(t, r.LinkAccount(555, stale).Empty(), "expired code must not link")
	assert.False(t, r.IsUserLinked(555))

	_, err = r.GenerateCode(steve)
	require.NoError(t, err)
	assert.Equal(t, 1, r.PendingCount(), "expired codes are pruned")
}

func TestUnlink(t *testing.T) {
	r := newTestRegistry(t, newMemStore(), RegistryConfig{})
	code, _ := r.GenerateCode(steve)
	r.LinkAccount(555, code)

	t.Run("missing player is a no-op", func(t *testing.T) {
		assert.True(t, r.Unlink(alex).Empty())
		assert.True(t, r.UnlinkUser(999).Empty())
		assert.Len(t, r.Links(), 1)
	})

	t.Run("by uuid", func(t *testing.T) {
		pair := r.Unlink(steve)
		assert.Equal(t, models.NewUserPair(555, steve), pair)
		assert.False(t, r.IsLinked(steve))
		assert.False(t, r.IsUserLinked(555))
		assert.True(t, r.Unlink(steve).Empty())
	})

	t.Run("by user id", func(t *testing.T) {
		code, _ := r.GenerateCode(alex)
		r.LinkAccount(777, code)

		pair := r.UnlinkUser(777)
		assert.Equal(t, models.NewUserPair(777, alex), pair)
		assert.False(t, r.IsLinked(alex))
		assert.True(t, r.LookupByUserID(777).Empty())
	})
}

func TestLinkScenario(t *testing.T) {
	r := newTestRegistry(t, newMemStore(), RegistryConfig{})
	r.randInt = func(int) int { return 482913 - minCode }

	code, err := r.GenerateCode(steve)
	require.NoError(t, err)
	assert.Equal(t, 482913, code)

	pair := r.LinkAccount(555, 482913)
	link, ok := pair.Link()
	require.True(t, ok)
	assert.Equal(t, models.ConfirmedLink{UserID: 555, Player: steve}, link)

	assert.True(t, r.IsLinked(steve))
	assert.False(t, r.IsUserLinked(666))
	assert.Equal(t, pair, r.LookupByUUID(steve))
	assert.Equal(t, pair, r.LookupByUserID(555))

	removed := r.UnlinkUser(555)
	assert.Equal(t, pair, removed)
	assert.False(t, r.IsUserLinked(555))
}

func TestPersistRoundTrip(t *testing.T) {
	store := newMemStore()
	r := newTestRegistry(t, store, RegistryConfig{})
	for i, player := range []uuid.UUID{steve, alex, uuid.New()} {
		code, err := r.GenerateCode(player)
		require.NoError(t, err)
		r.LinkAccount(int64(100+i), code)
	}
	require.NoError(t, r.Persist())

	saved, err := store.Load(defaultLinkSection)
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", saved["100"])

	reloaded := newTestRegistry(t, store, RegistryConfig{})
	assert.Equal(t, r.Links(), reloaded.Links())
	assert.Zero(t, reloaded.PendingCount())
}

func TestHydrate(t *testing.T) {
	t.Run("canonicalizes uuids", func(t *testing.T) {
		store := newMemStore()
		store.sections["accounts"] = map[string]string{"555": "11111111111111111111111111111111"}
		r := newTestRegistry(t, store, RegistryConfig{})
		require.NoError(t, r.Persist())

		assert.Equal(t, "11111111-1111-1111-1111-111111111111", store.sections["accounts"]["555"])
	})

	t.Run("custom section", func(t *testing.T) {
		store := newMemStore()
		store.sections["links"] = map[string]string{"1": steve.String()}
		r := newTestRegistry(t, store, RegistryConfig{Section: "links"})
		assert.True(t, r.IsLinked(steve))
	})

	corrupt := map[string]map[string]string{
		"bad user id":    {"steve": steve.String()},
		"bad uuid":       {"555": "not-a-uuid"},
		"duplicate uuid": {"555": steve.String(), "666": steve.String()},
	}
	for name, section := range corrupt {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			store.sections["accounts"] = section
			_, err := NewLinkRegistry(store, RegistryConfig{}, nopLogger{})
			assert.ErrorIs(t, err, ErrCorruptLinkStore)
		})
	}

	t.Run("store unavailable", func(t *testing.T) {
		store := newMemStore()
		store.failLoad = true
		_, err := NewLinkRegistry(store, RegistryConfig{}, nopLogger{})
		assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	})
}

func TestPersistFailureKeepsState(t *testing.T) {
	store := newMemStore()
	r := newTestRegistry(t, store, RegistryConfig{})
	code, _ := r.GenerateCode(steve)
	r.LinkAccount(555, code)

	store.failSave = true
	err := r.Persist()
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.True(t, r.IsLinked(steve))
}

func TestPersistKeepsNewestSnapshot(t *testing.T) {
	store := newGatedStore()
	r, err := NewLinkRegistry(store, RegistryConfig{}, nopLogger{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, r.Persist())
	}()
	<-store.entered

	code, err := r.GenerateCode(steve)
	require.NoError(t, err)
	r.LinkAccount(555, code)

	second := make(chan error, 1)
	go func() {
		defer wg.Done()
		second <- r.Persist()
	}()

	select {
	case <-second:
		t.Fatal("second persist finished while the first was still saving")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	wg.Wait()
	require.NoError(t, <-second)

	saved, err := store.Load(defaultLinkSection)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"555": steve.String()}, saved)
	assert.Equal(t, 2, store.saveCount())
}

func TestLinkFreeAccount(t *testing.T) {
	t.Run("links a free user", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		code, _ := r.GenerateCode(steve)

		pair, free := r.LinkFreeAccount(555, code)
		assert.True(t, free)
		assert.Equal(t, models.NewUserPair(555, steve), pair)
	})

	t.Run("linked user keeps link and code stays pending", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		code, _ := r.GenerateCode(steve)
		r.LinkAccount(555, code)

		other, _ := r.GenerateCode(alex)
		pair, free := r.LinkFreeAccount(555, other)
		assert.False(t, free)
		assert.True(t, pair.Empty())
		assert.Equal(t, steve, r.LookupByUserID(555).Player())

		pending, ok := r.PendingCode(alex)
		assert.True(t, ok)
		assert.Equal(t, other, pending)
	})

	t.Run("unknown code for free user", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		pair, free := r.LinkFreeAccount(555, 123456)
		assert.True(t, free)
		assert.True(t, pair.Empty())
	})

	t.Run("concurrent confirms keep one link", func(t *testing.T) {
		r := newTestRegistry(t, newMemStore(), RegistryConfig{})
		c1, _ := r.GenerateCode(steve)
		c2, _ := r.GenerateCode(alex)

		var wg sync.WaitGroup
		results := make(chan bool, 2)
		for _, code := range []int{c1, c2} {
			wg.Add(1)
			go func(code int) {
				defer wg.Done()
				pair, free := r.LinkFreeAccount(555, code)
				results <- free && !pair.Empty()
			}(code)
		}
		wg.Wait()
		close(results)

		linked := 0
		for ok := range results {
			if ok {
				linked++
			}
		}
		assert.Equal(t, 1, linked)
		assert.Len(t, r.Links(), 1)
	})
}
