// Package soundboard is the entry point for inbound commands and voice
// events. It resolves sounds through the catalog, plays them through the
// guild's voice session and turns every expected error into a reply.
package soundboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"slices"
	"strings"
	"sync"
	"time"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/formatting"
	"soundboard-bot/internal/metrics"
)

const (
	DefaultExtension      = ".mp3"
	DefaultMaxUploadBytes = 8 << 20

	topSoundsLimit = 10
	historyTimeout = 5 * time.Second
)

var ErrUploadTooLarge = errors.New("upload too large")

// contentTypes lists the accepted upload content types per clip extension.
var contentTypes = map[string][]string{
	".mp3":  {"audio/mpeg", "audio/mp3"},
	".ogg":  {"audio/ogg"},
	".opus": {"audio/ogg", "audio/opus"},
	".wav":  {"audio/wav", "audio/x-wav", "audio/wave"},
	".flac": {"audio/flac", "audio/x-flac"},
}

// SupportedExtension reports whether uploads with ext can be validated.
func SupportedExtension(ext string) bool {
	_, ok := contentTypes[ext]
	return ok
}

type Catalog interface {
	Get(name string) (domain.Sound, error)
	Has(name string) bool
	ListNames() []string
	Autocomplete(query string) []string
	Suggest(name string) (string, bool)
	Add(ctx context.Context, name string, content io.Reader) error
	Reload(ctx context.Context) error
}

type Sessions interface {
	Play(ctx context.Context, guildID, channelID string, sound domain.Sound) (string, error)
	Stop(guildID string) (domain.Sound, error)
}

type Dependencies struct {
	Catalog  Catalog
	Sessions Sessions
	Voice    ports.VoiceStateLookup
	Fetcher  ports.AttachmentFetcher
	// History is optional; plays are not recorded when nil.
	History        ports.PlayHistory
	Extension      string
	MaxUploadBytes int64
}

type PlayRequest struct {
	GuildID     string
	RequesterID string
	// TargetID defaults to the requester.
	TargetID  string
	SoundName string
}

type PlayResult struct {
	Sound     domain.Sound
	ChannelID string
}

type Service struct {
	catalog        Catalog
	sessions       Sessions
	voice          ports.VoiceStateLookup
	fetcher        ports.AttachmentFetcher
	history        ports.PlayHistory
	extension      string
	maxUploadBytes int64

	recording sync.WaitGroup
}

func NewService(deps Dependencies) *Service {
	if deps.Extension == "" {
		deps.Extension = DefaultExtension
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Service{
		catalog:        deps.Catalog,
		sessions:       deps.Sessions,
		voice:          deps.Voice,
		fetcher:        deps.Fetcher,
		history:        deps.History,
		extension:      deps.Extension,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}

func (s *Service) List() string {
	names := s.catalog.ListNames()
	if len(names) == 0 {
		return formatting.MsgNoSounds
	}
	return formatting.MsgSoundList(names)
}

func (s *Service) Autocomplete(query string) []string {
	return s.catalog.Autocomplete(query)
}

func (s *Service) Upload(ctx context.Context, att domain.Attachment) string {
	err := s.upload(ctx, att)
	switch {
	case err == nil:
		metrics.SoundUploads.WithLabelValues("success").Inc()
		slog.Info("Sound uploaded", "filename", att.Filename)
		return formatting.MsgUploaded(att.Filename)
	case errors.Is(err, domain.ErrInvalidFormat):
		metrics.SoundUploads.WithLabelValues("invalid").Inc()
		return formatting.MsgInvalidFormat(s.extension)
	case errors.Is(err, domain.ErrDuplicate):
		metrics.SoundUploads.WithLabelValues("duplicate").Inc()
		return formatting.MsgDuplicateSound
	case errors.Is(err, ErrUploadTooLarge):
		metrics.SoundUploads.WithLabelValues("too_large").Inc()
		return formatting.MsgUploadTooLarge(s.maxUploadBytes)
	default:
		metrics.SoundUploads.WithLabelValues("failure").Inc()
		slog.Error("Failed to upload sound", "filename", att.Filename, "error", err)
		return formatting.MsgUploadError
	}
}

func (s *Service) upload(ctx context.Context, att domain.Attachment) error {
	if !s.acceptsFormat(att) {
		return fmt.Errorf("%s (%s): %w", att.Filename, att.ContentType, domain.ErrInvalidFormat)
	}
	if int64(att.Size) > s.maxUploadBytes {
		return fmt.Errorf("%s is %d bytes: %w", att.Filename, att.Size, ErrUploadTooLarge)
	}

	name := att.Filename[:len(att.Filename)-len(s.extension)]
	if s.catalog.Has(name) {
		return fmt.Errorf("sound %q: %w", name, domain.ErrDuplicate)
	}

	body, err := s.fetcher.Fetch(ctx, att.URL)
	if err != nil {
		return fmt.Errorf("download attachment: %w", err)
	}
	defer body.Close()

	return s.catalog.Add(ctx, name, &sizeLimitedReader{
		r:         io.LimitReader(body, s.maxUploadBytes+1),
		remaining: s.maxUploadBytes,
	})
}

// sizeLimitedReader fails with ErrUploadTooLarge once more than remaining
// bytes have been read, so an oversized body is never stored truncated.
type sizeLimitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrUploadTooLarge
	}
	return n, err
}

func (s *Service) acceptsFormat(att domain.Attachment) bool {
	if !strings.HasSuffix(strings.ToLower(att.Filename), s.extension) {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(att.ContentType)
	if err != nil {
		return false
	}
	return slices.Contains(contentTypes[s.extension], mediaType)
}

func (s *Service) Play(ctx context.Context, req PlayRequest) string {
	if req.TargetID == "" {
		req.TargetID = req.RequesterID
	}

	res, err := s.play(ctx, req)
	switch {
	case err == nil:
		return formatting.MsgPlaying(res.Sound.Name(), res.ChannelID)
	case errors.Is(err, domain.ErrNotInVoice):
		return formatting.MsgNotInVoice(req.TargetID)
	case errors.Is(err, domain.ErrEmptyCatalog):
		return formatting.MsgNoSounds
	case errors.Is(err, domain.ErrNotFound):
		if suggestion, ok := s.catalog.Suggest(req.SoundName); ok {
			return formatting.MsgSoundNotFoundSuggest(req.SoundName, suggestion)
		}
		return formatting.MsgSoundNotFound(req.SoundName)
	case errors.Is(err, domain.ErrInvalidFormat):
		return formatting.MsgUnplayable(req.SoundName)
	default:
		slog.Error("Failed to play sound", "guild_id", req.GuildID, "sound", req.SoundName, "error", err)
		return formatting.MsgPlayError
	}
}

func (s *Service) play(ctx context.Context, req PlayRequest) (PlayResult, error) {
	channelID, ok := s.voice.UserVoiceChannel(req.GuildID, req.TargetID)
	if !ok {
		metrics.SoundsPlayed.WithLabelValues(string(domain.TriggerCommand), "not_in_voice").Inc()
		return PlayResult{}, fmt.Errorf("user %s: %w", req.TargetID, domain.ErrNotInVoice)
	}
	return s.playIn(ctx, req.GuildID, channelID, req.SoundName, req.RequesterID, domain.TriggerCommand)
}

func (s *Service) playIn(ctx context.Context, guildID, channelID, soundName, requesterID string, trigger domain.PlayTrigger) (PlayResult, error) {
	sound, err := s.catalog.Get(soundName)
	if err != nil {
		metrics.SoundsPlayed.WithLabelValues(string(trigger), "not_found").Inc()
		return PlayResult{}, err
	}

	playedIn, err := s.sessions.Play(ctx, guildID, channelID, sound)
	if err != nil {
		metrics.SoundsPlayed.WithLabelValues(string(trigger), "failure").Inc()
		return PlayResult{}, err
	}

	metrics.SoundsPlayed.WithLabelValues(string(trigger), "success").Inc()
	slog.Info("Playing sound", "guild_id", guildID, "channel_id", playedIn, "sound", sound.Name(), "trigger", trigger)

	s.record(domain.PlayEvent{
		GuildID:     guildID,
		ChannelID:   playedIn,
		RequesterID: requesterID,
		SoundName:   sound.Name(),
		Trigger:     trigger,
		PlayedAt:    time.Now().UTC(),
	})

	return PlayResult{Sound: sound, ChannelID: playedIn}, nil
}

// record stores the play in the background so replies are not delayed.
func (s *Service) record(event domain.PlayEvent) {
	if s.history == nil {
		return
	}
	s.recording.Add(1)
	go func() {
		defer s.recording.Done()
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := s.history.RecordPlay(ctx, event); err != nil {
			slog.Error("Failed to record play", "guild_id", event.GuildID, "sound", event.SoundName, "error", err)
		}
	}()
}

// Wait blocks until pending play records are written.
func (s *Service) Wait() {
	s.recording.Wait()
}

func (s *Service) Stop(guildID string) string {
	sound, err := s.sessions.Stop(guildID)
	if errors.Is(err, domain.ErrNothingPlaying) {
		return formatting.MsgNothingPlaying
	}
	if err != nil {
		slog.Error("Failed to stop playback", "guild_id", guildID, "error", err)
		return formatting.MsgPlayError
	}
	return formatting.MsgStopped(sound.Name())
}

func (s *Service) Reload(ctx context.Context) string {
	if err := s.catalog.Reload(ctx); err != nil {
		slog.Error("Failed to reload sounds", "error", err)
		return formatting.MsgReloadError
	}
	return formatting.MsgReloaded
}

func (s *Service) Top(ctx context.Context, guildID string) string {
	if s.history == nil {
		return formatting.MsgHistoryDisabled
	}
	counts, err := s.history.TopSounds(ctx, guildID, topSoundsLimit)
	if err != nil {
		slog.Error("Failed to load top sounds", "guild_id", guildID, "error", err)
		return formatting.MsgHistoryError
	}
	if len(counts) == 0 {
		return formatting.MsgNoHistory
	}
	return formatting.MsgTopSounds(counts)
}

// ManageTheme validates the request; theme sounds are not stored.
func (s *Service) ManageTheme(ctx context.Context, guildID, targetID, soundName string) string {
	if _, err := s.catalog.Get(soundName); err != nil {
		if errors.Is(err, domain.ErrEmptyCatalog) {
			return formatting.MsgNoSounds
		}
		return formatting.MsgSoundNotFound(soundName)
	}
	slog.Info("Theme sound requested", "guild_id", guildID, "user_id", targetID, "sound", soundName)
	return formatting.MsgThemeUnavailable
}

// HandleVoiceStateChange plays a random sound when a member joins a voice
// channel. Leaving and switching channels are only logged.
func (s *Service) HandleVoiceStateChange(ctx context.Context, change domain.VoiceStateChange) {
	if change.Self {
		return
	}

	switch {
	case change.Joined():
		slog.Debug("Member joined voice channel", "guild_id", change.GuildID, "user_id", change.UserID, "channel_id", change.AfterChannelID)
		_, err := s.playIn(ctx, change.GuildID, change.AfterChannelID, domain.Wildcard, change.UserID, domain.TriggerJoin)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrEmptyCatalog):
			slog.Debug("No sounds to greet member with", "guild_id", change.GuildID)
		default:
			slog.Warn("Failed to play join sound", "guild_id", change.GuildID, "error", err)
		}
	case change.Left():
		slog.Debug("Member left voice channel", "guild_id", change.GuildID, "user_id", change.UserID, "channel_id", change.BeforeChannelID)
	case change.BeforeChannelID != change.AfterChannelID:
		slog.Debug("Member switched voice channel", "guild_id", change.GuildID, "user_id", change.UserID,
			"from", change.BeforeChannelID, "to", change.AfterChannelID)
	}
}
