package application

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"mcdiscord/internal/models"
	"mcdiscord/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCorruptLinkStore   = errors.New("corrupt link store")
	ErrCodeSpaceExhausted = errors.New("no free link codes left")
)

type RegistryConfig struct {
	Section      string        `env:"SECTION" envDefault:"accounts"`
	CodeTTL      time.Duration `env:"CODE_TTL" envDefault:"0s"`
	SaveInterval time.Duration `env:"SAVE_INTERVAL" envDefault:"5m"`
}

type pendingCode struct {
	player   uuid.UUID
	issuedAt time.Time
}

// LinkRegistry holds the pending link codes and the confirmed Discord to
// Minecraft links. Confirmed links are loaded from the store on construction
// and written back by Persist; pending codes only live in memory.
type LinkRegistry struct {
	mu sync.RWMutex
	// persistMu orders saves so an older snapshot never overwrites a newer one.
	persistMu sync.Mutex

	pending map[int]pendingCode
	codes   map[uuid.UUID]int
	links   map[int64]uuid.UUID
	owners  map[uuid.UUID]int64

	store   repository.ConfigStore
	section string
	codeTTL time.Duration
	logger  Logger

	now     func() time.Time
	randInt func(n int) int
}

func NewLinkRegistry(store repository.ConfigStore, cfg RegistryConfig, logger Logger) (*LinkRegistry, error) {
	section := cfg.Section
	if section == "" {
		section = defaultLinkSection
	}

	r := &LinkRegistry{
		pending: make(map[int]pendingCode),
		codes:   make(map[uuid.UUID]int),
		links:   make(map[int64]uuid.UUID),
		owners:  make(map[uuid.UUID]int64),
		store:   store,
		section: section,
		codeTTL: cfg.CodeTTL,
		logger:  logger,
		now:     time.Now,
		randInt: rand.Intn,
	}

	if err := r.hydrate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *LinkRegistry) hydrate() error {
	values, err := r.store.Load(r.section)
	if err != nil {
		return fmt.Errorf("failed to load links: %w", err)
	}

	links := make(map[int64]uuid.UUID, len(values))
	owners := make(map[uuid.UUID]int64, len(values))
	for key, value := range values {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad user id %q: %v", ErrCorruptLinkStore, key, err)
		}
		player, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("%w: bad uuid %q for user %d: %v", ErrCorruptLinkStore, value, userID, err)
		}
		if other, dup := owners[player]; dup {
			return fmt.Errorf("%w: uuid %s linked to both %d and %d", ErrCorruptLinkStore, player, other, userID)
		}
		links[userID] = player
		owners[player] = userID
	}

	r.mu.Lock()
	r.links = links
	r.owners = owners
	r.mu.Unlock()

	r.logger.Info("Loaded %d linked accounts from section %s", len(links), r.section)
	return nil
}

// Persist writes every confirmed link to the store, replacing the section.
func (r *LinkRegistry) Persist() error {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.RLock()
	values := make(map[string]string, len(r.links))
	for userID, player := range r.links {
		values[strconv.FormatInt(userID, 10)] = player.String()
	}
	r.mu.RUnlock()

	if err := r.store.Save(r.section, values); err != nil {
		return fmt.Errorf("failed to persist links: %w", err)
	}

	r.logger.Debug("Persisted %d linked accounts", len(values))
	return nil
}

// GenerateCode returns the pending code for player, issuing a new one if the
// player has none.
func (r *LinkRegistry) GenerateCode(player uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.codes[player]; ok {
		if !r.expired(r.pending[code]) {
			return code, nil
		}
		r.dropPending(code)
	}
	r.pruneExpired()

	if len(r.pending) >= codeSpace {
		return 0, ErrCodeSpaceExhausted
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := minCode + r.randInt(codeSpace)
		if _, taken := r.pending[code]; taken {
			continue
		}
		r.pending[code] = pendingCode{player: player, issuedAt: r.now()}
		r.codes[player] = code
		r.logger.Debug("Issued link code for %s", player)
		return code, nil
	}

	return 0, ErrCodeSpaceExhausted
}

// PendingCode reports the unexpired code waiting for player, if any.
func (r *LinkRegistry) PendingCode(player uuid.UUID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.codes[player]
	if !ok || r.expired(r.pending[code]) {
		return 0, false
	}
	return code, true
}

func (r *LinkRegistry) PendingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// LinkAccount consumes code and links its player to userID. An existing link
// of userID is overwritten. Unknown or expired codes yield an empty pair.
func (r *LinkRegistry) LinkAccount(userID int64, code int) models.UserPair {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.link(userID, code)
}

// LinkFreeAccount is LinkAccount for a user without a link. When userID is
// already linked it returns false and leaves code pending.
func (r *LinkRegistry) LinkFreeAccount(userID int64, code int) (models.UserPair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[userID]; ok {
		return models.UserPair{}, false
	}
	return r.link(userID, code), true
}

// link must be called with mu held.
func (r *LinkRegistry) link(userID int64, code int) models.UserPair {
	p, ok := r.pending[code]
	if !ok {
		return models.UserPair{}
	}
	r.dropPending(code)
	if r.expired(p) {
		return models.UserPair{}
	}

	if previous, ok := r.links[userID]; ok && previous != p.player {
		r.logger.Info("User %d relinked from %s to %s", userID, previous, p.player)
		delete(r.owners, previous)
	}
	if owner, ok := r.owners[p.player]; ok && owner != userID {
		r.logger.Info("Player %s moved from user %d to %d", p.player, owner, userID)
		delete(r.links, owner)
	}

	r.links[userID] = p.player
	r.owners[p.player] = userID
	return models.NewUserPair(userID, p.player)
}

func (r *LinkRegistry) IsLinked(player uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.owners[player]
	return ok
}

func (r *LinkRegistry) IsUserLinked(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.links[userID]
	return ok
}

func (r *LinkRegistry) LookupByUUID(player uuid.UUID) models.UserPair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.owners[player]
	if !ok {
		return models.UserPair{}
	}
	return models.NewUserPair(userID, player)
}

func (r *LinkRegistry) LookupByUserID(userID int64) models.UserPair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.links[userID]
	if !ok {
		return models.UserPair{}
	}
	return models.NewUserPair(userID, player)
}

// Unlink removes the link of player and returns it, or an empty pair.
func (r *LinkRegistry) Unlink(player uuid.UUID) models.UserPair {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[player]
	if !ok {
		return models.UserPair{}
	}
	delete(r.owners, player)
	delete(r.links, userID)
	return models.NewUserPair(userID, player)
}

// UnlinkUser removes the link of userID and returns it, or an empty pair.
func (r *LinkRegistry) UnlinkUser(userID int64) models.UserPair {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.links[userID]
	if !ok {
		return models.UserPair{}
	}
	delete(r.links, userID)
	delete(r.owners, player)
	return models.NewUserPair(userID, player)
}

// Links returns a copy of all confirmed links.
func (r *LinkRegistry) Links() map[int64]uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make(map[int64]uuid.UUID, len(r.links))
	for userID, player := range r.links {
		links[userID] = player
	}
	return links
}

func (r *LinkRegistry) expired(p pendingCode) bool {
	return r.codeTTL > 0 && r.now().Sub(p.issuedAt) >= r.codeTTL
}

func (r *LinkRegistry) pruneExpired() {
	if r.codeTTL <= 0 {
		return
	}
	for code, p := range r.pending {
		if r.expired(p) {
			r.dropPending(code)
		}
	}
}

// dropPending must be called with mu held.
func (r *LinkRegistry) dropPending(code int) {
	if p, ok := r.pending[code]; ok {
		delete(r.codes, p.player)
		delete(r.pending, code)
	}
}
