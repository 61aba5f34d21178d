package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
)

type VoiceSession interface {
	ChannelVoiceJoin(gID, cID string, mute, deaf bool) (*discordgo.VoiceConnection, error)
}

// encoder is the part of *dca.EncodeSession a connection controls.
type encoder interface {
	Stop() error
	Cleanup()
}

type streamFunc func(audio io.Reader, done chan error) (encoder, error)

type VoiceConnector struct {
	session VoiceSession
	opts    dca.EncodeOptions
}

var _ ports.VoiceConnector = (*VoiceConnector)(nil)

func NewVoiceConnector(session VoiceSession) *VoiceConnector {
	opts := *dca.StdEncodeOptions
	opts.Bitrate = 96
	opts.Application = dca.AudioApplicationLowDelay
	return &VoiceConnector{session: session, opts: opts}
}

// JoinVoice joins channelID self-deafened. The context only bounds the wait
// before dialing; the handshake itself is bounded by discordgo.
func (c *VoiceConnector) JoinVoice(ctx context.Context, guildID, channelID string) (ports.VoiceConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := c.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}

	opts := c.opts
	return &voiceConnection{
		channelID: channelID,
		stream: func(audio io.Reader, done chan error) (encoder, error) {
			enc, err := dca.EncodeMem(audio, &opts)
			if err != nil {
				return nil, err
			}
			dca.NewStream(enc, vc, done)
			return enc, nil
		},
		leave: vc.Disconnect,
	}, nil
}

type voiceConnection struct {
	channelID string
	stream    streamFunc
	leave     func() error

	mu      sync.Mutex
	gen     uint64
	current encoder
}

func (c *voiceConnection) ChannelID() string {
	return c.channelID
}

// Play starts streaming audio and returns once the stream has started.
// onFinished runs after the stream ends, is stopped or fails.
func (c *voiceConnection) Play(audio io.ReadCloser, onFinished func(error)) error {
	c.mu.Lock()
	c.stopLocked()

	done := make(chan error, 1)
	enc, err := c.stream(audio, done)
	if err != nil {
		c.mu.Unlock()
		audio.Close()
		return fmt.Errorf("encode audio: %w: %v", domain.ErrInvalidFormat, err)
	}
	c.gen++
	gen := c.gen
	c.current = enc
	c.mu.Unlock()

	go c.wait(gen, enc, audio, done, onFinished)
	return nil
}

func (c *voiceConnection) wait(gen uint64, enc encoder, audio io.Closer, done <-chan error, onFinished func(error)) {
	err := <-done
	if errors.Is(err, io.EOF) {
		err = nil
	}

	c.mu.Lock()
	if c.gen == gen {
		c.current = nil
	}
	c.mu.Unlock()

	enc.Cleanup()
	if cerr := audio.Close(); cerr != nil {
		slog.Debug("Failed to close audio source", "channel_id", c.channelID, "error", cerr)
	}
	if onFinished != nil {
		onFinished(err)
	}
}

func (c *voiceConnection) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *voiceConnection) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *voiceConnection) stopLocked() {
	if c.current == nil {
		return
	}
	if err := c.current.Stop(); err != nil {
		slog.Debug("Failed to stop encoder", "channel_id", c.channelID, "error", err)
	}
	c.gen++
	c.current = nil
}

func (c *voiceConnection) Disconnect(ctx context.Context) error {
	c.Stop()
	if err := c.leave(); err != nil {
		return fmt.Errorf("disconnect from %s: %w", c.channelID, err)
	}
	return nil
}

type VoiceStates struct {
	state *discordgo.State
}

var _ ports.VoiceStateLookup = (*VoiceStates)(nil)

func NewVoiceStates(state *discordgo.State) *VoiceStates {
	return &VoiceStates{state: state}
}

func (v *VoiceStates) UserVoiceChannel(guildID, userID string) (string, bool) {
	vs, err := v.state.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}
