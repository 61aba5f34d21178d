package ports

import (
	"context"
	"io"

	"soundboard-bot/internal/core/domain"
)

// SoundStorage is the location clips are loaded from and uploaded to.
type SoundStorage interface {
	// List returns every clip currently in storage. It returns
	// domain.ErrStorageUnavailable when the location does not exist.
	List(ctx context.Context) ([]domain.Sound, error)
	// Save writes a new clip and fails with domain.ErrDuplicate if the name is taken.
	Save(ctx context.Context, name string, content io.Reader) error
}

type VoiceConnector interface {
	JoinVoice(ctx context.Context, guildID, channelID string) (VoiceConnection, error)
}

// VoiceConnection is a live connection to one voice channel.
type VoiceConnection interface {
	ChannelID() string
	// Play starts streaming audio. onFinished is called once the stream ends,
	// with a nil error on natural completion or an explicit stop.
	Play(audio io.ReadCloser, onFinished func(error)) error
	IsPlaying() bool
	Stop()
	Disconnect(ctx context.Context) error
}

type VoiceStateLookup interface {
	// UserVoiceChannel returns the voice channel a member is connected to.
	UserVoiceChannel(guildID, userID string) (string, bool)
}

type CommandRegistrar interface {
	ClearGlobalCommands(ctx context.Context) error
	// SyncGuildCommands replaces the guild's command set. It returns
	// domain.ErrPermissionDenied when the bot may not register commands there.
	SyncGuildCommands(ctx context.Context, guildID string) error
}

type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type PlayHistory interface {
	RecordPlay(ctx context.Context, event domain.PlayEvent) error
	TopSounds(ctx context.Context, guildID string, limit int) ([]domain.SoundCount, error)
}
