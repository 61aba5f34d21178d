// Package catalog keeps the in-memory index of playable sounds.
//
// Readers always see a complete snapshot: every reload builds a fresh
// name->sound map from storage and publishes it with a single atomic swap.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/metrics"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
)

const (
	// MaxChoices is the platform limit for autocomplete suggestions.
	MaxChoices = 25

	suggestThreshold = 0.8
)

type snapshot struct {
	sounds map[string]domain.Sound
	names  []string
}

type Catalog struct {
	storage ports.SoundStorage
	current atomic.Pointer[snapshot]

	// writeMu serializes reloads and uploads; readers never take it.
	writeMu sync.Mutex
	intn    func(n int) int
}

func New(storage ports.SoundStorage) *Catalog {
	c := &Catalog{
		storage: storage,
		intn:    rand.Intn,
	}
	c.current.Store(newSnapshot(nil))
	return c
}

// Load rescans storage and replaces the catalog contents. A missing storage
// location leaves the catalog empty and is not reported as an error.
func (c *Catalog) Load(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.load(ctx)
}

func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Catalog) load(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.CatalogReloadDuration.Observe(time.Since(start).Seconds())
	}()

	sounds, err := c.storage.List(ctx)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		slog.Warn("Sound storage does not exist, catalog is empty", "error", err)
		c.publish(newSnapshot(nil))
		return nil
	}
	if err != nil {
		return fmt.Errorf("list sounds: %w", err)
	}

	snap := newSnapshot(sounds)
	c.publish(snap)
	slog.Info("Sound catalog loaded", "sounds", len(snap.names))
	return nil
}

func (c *Catalog) publish(snap *snapshot) {
	c.current.Store(snap)
	metrics.CatalogSounds.Set(float64(len(snap.names)))
}

func newSnapshot(sounds []domain.Sound) *snapshot {
	snap := &snapshot{
		sounds: make(map[string]domain.Sound, len(sounds)),
		names:  make([]string, 0, len(sounds)),
	}
	for _, s := range sounds {
		name := s.Name()
		if name == "" || name == domain.Wildcard {
			slog.Warn("Skipping sound with reserved name", "name", name)
			continue
		}
		if _, exists := snap.sounds[name]; exists {
			slog.Warn("Skipping duplicate sound", "name", name)
			continue
		}
		snap.sounds[name] = s
		snap.names = append(snap.names, name)
	}
	slices.Sort(snap.names)
	return snap
}

// Get returns the sound with the given name, or a random one for the wildcard.
func (c *Catalog) Get(name string) (domain.Sound, error) {
	snap := c.current.Load()
	if len(snap.names) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	if name == domain.Wildcard {
		return snap.sounds[snap.names[c.intn(len(snap.names))]], nil
	}

	s, ok := snap.sounds[name]
	if !ok {
		return nil, fmt.Errorf("sound %q: %w", name, domain.ErrNotFound)
	}
	return s, nil
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.current.Load().sounds[name]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.current.Load().names)
}

// ListNames returns the current names in sorted order.
func (c *Catalog) ListNames() []string {
	return slices.Clone(c.current.Load().names)
}

// Autocomplete filters names (and the wildcard) by case-insensitive
// substring match, capped at MaxChoices.
func (c *Catalog) Autocomplete(query string) []string {
	fold := cases.Fold()
	q := fold.String(query)

	candidates := append(c.ListNames(), domain.Wildcard)
	matches := make([]string, 0, MaxChoices)
	for _, name := range candidates {
		if !strings.Contains(fold.String(name), q) {
			continue
		}
		matches = append(matches, name)
		if len(matches) == MaxChoices {
			break
		}
	}
	return matches
}

// Suggest returns the catalog name closest to name, if any is close enough.
func (c *Catalog) Suggest(name string) (string, bool) {
	needle := strings.ToLower(name)
	best, bestScore := "", 0.0
	for _, candidate := range c.current.Load().names {
		score := matchr.JaroWinkler(needle, strings.ToLower(candidate), false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore >= suggestThreshold
}

// Add persists a new clip and reloads the catalog.
func (c *Catalog) Add(ctx context.Context, name string, content io.Reader) error {
	if name == "" || name == domain.Wildcard || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("sound name %q: %w", name, domain.ErrInvalidFormat)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.Has(name) {
		return fmt.Errorf("sound %q: %w", name, domain.ErrDuplicate)
	}

	if err := c.storage.Save(ctx, name, content); err != nil {
		return fmt.Errorf("save sound %q: %w", name, err)
	}

	return c.load(ctx)
}
