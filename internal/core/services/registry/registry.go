// Package registry synchronizes the soundboard command set to every
// administered guild. Synchronization is a best-effort fan-out: a guild that
// refuses registration is recorded and skipped, never aborting the others.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultRate        = 2
	DefaultConcurrency = 4
)

// Report is the outcome of one synchronization run.
type Report struct {
	Synced []string
	Denied []string
	Failed map[string]error
}

type Options struct {
	// Rate caps guild synchronizations per second.
	Rate        float64
	Concurrency int
}

type Registry struct {
	registrar   ports.CommandRegistrar
	limiter     *rate.Limiter
	concurrency int

	// guilds is the administered set; empty means every observed guild.
	guilds map[string]struct{}

	mu     sync.Mutex
	synced map[string]bool
}

func New(registrar ports.CommandRegistrar, guildIDs []string, opts Options) *Registry {
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	guilds := make(map[string]struct{}, len(guildIDs))
	for _, id := range guildIDs {
		guilds[id] = struct{}{}
	}

	return &Registry{
		registrar:   registrar,
		limiter:     rate.NewLimiter(rate.Limit(opts.Rate), 1),
		concurrency: opts.Concurrency,
		guilds:      guilds,
		synced:      make(map[string]bool),
	}
}

// Administers reports whether commands should be registered in the guild.
func (r *Registry) Administers(guildID string) bool {
	if len(r.guilds) == 0 {
		return true
	}
	_, ok := r.guilds[guildID]
	return ok
}

// Initialize clears globally registered commands and then synchronizes the
// command set to every configured guild.
func (r *Registry) Initialize(ctx context.Context) Report {
	if err := r.registrar.ClearGlobalCommands(ctx); err != nil {
		slog.Error("Failed to clear global commands", "error", err)
	} else {
		slog.Info("Cleared global commands")
	}

	guildIDs := make([]string, 0, len(r.guilds))
	for id := range r.guilds {
		guildIDs = append(guildIDs, id)
	}
	slices.Sort(guildIDs)

	return r.syncAll(ctx, guildIDs)
}

// SyncGuild registers commands in a newly observed guild. Guilds already
// synchronized, or denied earlier, are skipped.
func (r *Registry) SyncGuild(ctx context.Context, guildID string) error {
	if !r.Administers(guildID) || !r.claim(guildID) {
		return nil
	}
	return r.sync(ctx, guildID)
}

func (r *Registry) syncAll(ctx context.Context, guildIDs []string) Report {
	report := Report{Failed: make(map[string]error)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for _, id := range guildIDs {
		if !r.claim(id) {
			continue
		}
		id := id
		g.Go(func() error {
			err := r.sync(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Synced = append(report.Synced, id)
			case errors.Is(err, domain.ErrPermissionDenied):
				report.Denied = append(report.Denied, id)
			default:
				report.Failed[id] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(report.Synced)
	slices.Sort(report.Denied)

	slog.Info("Command synchronization finished",
		"synced", len(report.Synced), "denied", len(report.Denied), "failed", len(report.Failed))
	return report
}

func (r *Registry) sync(ctx context.Context, guildID string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.release(guildID)
		return err
	}

	err := r.registrar.SyncGuildCommands(ctx, guildID)
	switch {
	case err == nil:
		metrics.CommandSyncs.WithLabelValues("success").Inc()
		slog.Info("Successfully added commands to guild", "guild_id", guildID)
	case errors.Is(err, domain.ErrPermissionDenied):
		metrics.CommandSyncs.WithLabelValues("denied").Inc()
		slog.Warn("The bot does not have access to guild, ignoring", "guild_id", guildID)
	default:
		r.release(guildID)
		metrics.CommandSyncs.WithLabelValues("failure").Inc()
		slog.Error("Failed to sync commands to guild", "guild_id", guildID, "error", err)
	}
	return err
}

// claim marks the guild as in progress and reports whether the caller owns it.
func (r *Registry) claim(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.synced[guildID] {
		return false
	}
	r.synced[guildID] = true
	return true
}

// release lets a transient failure be retried on the next observation.
func (r *Registry) release(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.synced, guildID)
}
