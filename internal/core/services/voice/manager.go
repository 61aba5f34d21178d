// Package voice owns the per-guild voice connections.
//
// Each guild has at most one connection. Play reuses an existing connection,
// so concurrent requests for the same guild never dial twice. A finished
// stream does not disconnect by itself: the idle watchdog started by
// Manager.Start is the only path that tears down a connection that has
// stopped streaming.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"
	"soundboard-bot/internal/metrics"
)

const DefaultIdleCheckInterval = 100 * time.Millisecond

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

type session struct {
	guildID string
	state   atomic.Int32

	mu      sync.Mutex
	conn    ports.VoiceConnection
	current domain.Sound
}

func (s *session) setState(state State) {
	s.state.Store(int32(state))
}

type Manager struct {
	connector ports.VoiceConnector
	interval  time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(connector ports.VoiceConnector, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultIdleCheckInterval
	}
	return &Manager{
		connector: connector,
		interval:  interval,
		sessions:  make(map[string]*session),
	}
}

func (m *Manager) session(guildID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok {
		s = &session{guildID: guildID}
		m.sessions[guildID] = s
	}
	return s
}

func (m *Manager) existing(guildID string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

func (m *Manager) snapshot() []*session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Play streams sound in the guild and returns the channel it is played in.
// When the guild already has a connection it is reused and channelID is
// ignored; a sound that is still streaming is replaced.
func (m *Manager) Play(ctx context.Context, guildID, channelID string, sound domain.Sound) (string, error) {
	s := m.session(guildID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.setState(StateConnecting)
		conn, err := m.connector.JoinVoice(ctx, guildID, channelID)
		if err != nil {
			s.setState(StateIdle)
			return "", fmt.Errorf("join voice channel %s: %w", channelID, err)
		}
		s.conn = conn
		metrics.VoiceConnections.Inc()
		slog.Info("Joined voice channel", "guild_id", guildID, "channel_id", channelID)
	} else if s.conn.ChannelID() != channelID {
		slog.Debug("Reusing voice connection in another channel", "guild_id", guildID, "requested", channelID, "channel_id", s.conn.ChannelID())
	}

	if s.conn.IsPlaying() {
		s.conn.Stop()
	}

	audio, err := sound.Audio()
	if err != nil {
		s.current = nil
		s.setState(StateIdle)
		return "", fmt.Errorf("open audio for %q: %w", sound.Name(), err)
	}

	name := sound.Name()
	err = s.conn.Play(audio, func(err error) {
		if err != nil {
			slog.Warn("Playback ended with error", "guild_id", guildID, "sound", name, "error", err)
			return
		}
		slog.Debug("Playback finished", "guild_id", guildID, "sound", name)
	})
	if err != nil {
		s.current = nil
		s.setState(StateIdle)
		return "", fmt.Errorf("play %q: %w", name, err)
	}

	s.current = sound
	s.setState(StatePlaying)
	return s.conn.ChannelID(), nil
}

// Stop halts the active stream. The connection itself is released by the
// watchdog on its next sweep.
func (m *Manager) Stop(guildID string) (domain.Sound, error) {
	s, ok := m.existing(guildID)
	if !ok {
		return nil, domain.ErrNothingPlaying
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || !s.conn.IsPlaying() {
		return nil, domain.ErrNothingPlaying
	}

	s.conn.Stop()
	slog.Info("Playback stopped", "guild_id", guildID, "sound", soundName(s.current))
	return s.current, nil
}

// NowPlaying returns the sound currently streaming in the guild.
func (m *Manager) NowPlaying(guildID string) (domain.Sound, bool) {
	s, ok := m.existing(guildID)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.conn.IsPlaying() || s.current == nil {
		return nil, false
	}
	return s.current, true
}

// State reports the session state. A session whose stream has ended is
// idle even while the watchdog has yet to release its connection.
func (m *Manager) State(guildID string) State {
	s, ok := m.existing(guildID)
	if !ok {
		return StateIdle
	}
	state := State(s.state.Load())
	if state != StatePlaying {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.conn.IsPlaying() {
		return StateIdle
	}
	return StatePlaying
}

// Start runs the idle watchdog until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("Idle watchdog started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep disconnects every connection that is no longer streaming and
// returns how many were closed.
func (m *Manager) Sweep(ctx context.Context) int {
	closed := 0
	for _, s := range m.snapshot() {
		if m.reapIfIdle(ctx, s) {
			closed++
		}
	}
	return closed
}

// reapIfIdle skips a session whose lock is held, such as one still dialing,
// so a slow guild never delays teardown in the others.
func (m *Manager) reapIfIdle(ctx context.Context, s *session) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsPlaying() {
		return false
	}

	m.teardown(ctx, s)
	metrics.IdleDisconnects.Inc()
	return true
}

// teardown must be called with s.mu held.
func (m *Manager) teardown(ctx context.Context, s *session) {
	if err := s.conn.Disconnect(ctx); err != nil {
		slog.Error("Failed to disconnect from voice channel", "guild_id", s.guildID, "error", err)
	} else {
		slog.Info("Left voice channel", "guild_id", s.guildID)
	}
	s.conn = nil
	s.current = nil
	s.setState(StateIdle)
	metrics.VoiceConnections.Dec()
}

// Close stops playback and disconnects every guild.
func (m *Manager) Close(ctx context.Context) {
	for _, s := range m.snapshot() {
		s.mu.Lock()
		if s.conn != nil {
			if s.conn.IsPlaying() {
				s.conn.Stop()
			}
			m.teardown(ctx, s)
		}
		s.mu.Unlock()
	}
}

func soundName(s domain.Sound) string {
	if s == nil {
		return ""
	}
	return s.Name()
}
