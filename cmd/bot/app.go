package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"soundboard-bot/internal/adapters/attachment"
	"soundboard-bot/internal/adapters/discord"
	"soundboard-bot/internal/adapters/discord/commands"
	"soundboard-bot/internal/adapters/storage/filesystem"
	"soundboard-bot/internal/adapters/storage/postgres"
	"soundboard-bot/internal/config"
	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/core/services/catalog"
	"soundboard-bot/internal/core/services/registry"
	"soundboard-bot/internal/core/services/soundboard"
	"soundboard-bot/internal/core/services/voice"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
)

// historyStore is a play history that owns a connection pool.
type historyStore interface {
	ports.PlayHistory
	Close()
}

type App struct {
	config        *config.Config
	discord       *discordgo.Session
	history       historyStore
	catalog       *catalog.Catalog
	voice         *voice.Manager
	soundboard    *soundboard.Service
	registry      *registry.Registry
	scheduler     *cron.Cron
	metricsServer *http.Server
	runCtx        context.Context
	runCancel     context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if !soundboard.SupportedExtension(cfg.SoundExtension) {
		return nil, fmt.Errorf("unsupported sound extension %q", cfg.SoundExtension)
	}

	session, err := discord.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	app := &App{
		config:    cfg,
		discord:   session,
		runCtx:    runCtx,
		runCancel: runCancel,
	}

	app.history = openHistory(ctx, cfg.DatabaseURL)

	app.catalog = catalog.New(filesystem.NewStore(afero.NewOsFs(), cfg.SoundsDir, cfg.SoundExtension))
	if err := app.catalog.Load(ctx); err != nil {
		slog.Error("Failed to load sounds", "dir", cfg.SoundsDir, "error", err)
	}

	app.voice = voice.NewManager(discord.NewVoiceConnector(session), cfg.IdleCheckInterval)

	registrar := discord.NewCommandRegistrar(session, func() string {
		return session.State.User.ID
	}, commands.GetApplicationCommands())
	app.registry = registry.New(registrar, cfg.ActiveGuilds, registry.Options{
		Rate:        cfg.CommandSyncRate,
		Concurrency: cfg.CommandSyncConcurrency,
	})

	deps := soundboard.Dependencies{
		Catalog:        app.catalog,
		Sessions:       app.voice,
		Voice:          discord.NewVoiceStates(session.State),
		Fetcher:        attachment.NewClient(cfg.MaxUploadBytes),
		Extension:      cfg.SoundExtension,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if app.history != nil {
		deps.History = app.history
	}
	app.soundboard = soundboard.NewService(deps)

	router := commands.NewRouter()
	(&commands.BotHandler{Soundboard: app.soundboard}).Register(router)

	events := discord.NewEvents(runCtx, app.soundboard, app.registry)
	session.AddHandler(events.Ready)
	session.AddHandler(events.GuildCreate)
	session.AddHandler(events.VoiceStateUpdate)
	session.AddHandler(router.HandleFunc())

	return app, nil
}

// openHistory connects to the play history database. History is optional:
// a missing URL or an unreachable database disables it.
func openHistory(ctx context.Context, url string) historyStore {
	if url == "" {
		slog.Info("DATABASE_URL is not set, play history disabled")
		return nil
	}

	store, err := postgres.NewPlayStore(ctx, url)
	if err != nil {
		slog.Error("Failed to connect to play history database", "error", err)
		return nil
	}
	if err := store.Migrate(ctx); err != nil {
		slog.Error("Failed to migrate play history database", "error", err)
		store.Close()
		return nil
	}
	return store
}

func (a *App) Run() error {
	a.startMetricsServer()

	if err := a.discord.Open(); err != nil {
		slog.Error("Failed to open discord session", "error", err)
		return err
	}

	go a.voice.Start(a.runCtx)
	go a.registry.Initialize(a.runCtx)

	if err := a.startScheduler(); err != nil {
		return err
	}

	return nil
}

func (a *App) startMetricsServer() {
	if a.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Starting metrics server", "addr", a.config.MetricsAddr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

func (a *App) startScheduler() error {
	if a.config.CatalogReloadSchedule == "" {
		return nil
	}

	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(a.config.CatalogReloadSchedule, a.reloadCatalog)
	if err != nil {
		return fmt.Errorf("schedule catalog reload: %w", err)
	}
	a.scheduler.Start()
	slog.Info("Scheduled catalog reload", "schedule", a.config.CatalogReloadSchedule)
	return nil
}

func (a *App) reloadCatalog() {
	if err := a.catalog.Reload(a.runCtx); err != nil {
		slog.Error("Failed to reload sounds", "error", err)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down...")

	if a.runCancel != nil {
		a.runCancel()
	}

	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}

	if a.voice != nil {
		a.voice.Close(ctx)
	}

	if a.soundboard != nil {
		a.soundboard.Wait()
	}

	var errs []error

	if a.discord != nil {
		if err := a.discord.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close discord session: %w", err))
		}
	}

	if a.history != nil {
		a.history.Close()
	}

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}

	return errors.Join(errs...)
}
