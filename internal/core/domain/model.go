package domain

import (
	"io"
	"time"
)

// Wildcard is the lookup key that selects a random sound. It is never stored.
const Wildcard = "*"

// Sound is a named clip that can produce its audio on demand.
type Sound interface {
	Name() string
	Audio() (io.ReadCloser, error)
}

type FileSound struct {
	name string
	path string
	open func(path string) (io.ReadCloser, error)
}

func NewFileSound(name, path string, open func(path string) (io.ReadCloser, error)) *FileSound {
	return &FileSound{name: name, path: path, open: open}
}

func (s *FileSound) Name() string { return s.name }

func (s *FileSound) Path() string { return s.path }

func (s *FileSound) Audio() (io.ReadCloser, error) {
	return s.open(s.path)
}

func (s *FileSound) String() string { return s.name }

// VoiceStateChange describes a member moving between voice channels.
// An empty channel ID means "not in a voice channel".
type VoiceStateChange struct {
	GuildID         string
	UserID          string
	BeforeChannelID string
	AfterChannelID  string
	Self            bool
}

func (c VoiceStateChange) Joined() bool {
	return c.BeforeChannelID == "" && c.AfterChannelID != ""
}

func (c VoiceStateChange) Left() bool {
	return c.BeforeChannelID != "" && c.AfterChannelID == ""
}

type PlayTrigger string

const (
	TriggerCommand PlayTrigger = "command"
	TriggerJoin    PlayTrigger = "join"
)

type PlayEvent struct {
	GuildID     string
	ChannelID   string
	RequesterID string
	SoundName   string
	Trigger     PlayTrigger
	PlayedAt    time.Time
}

type SoundCount struct {
	SoundName string
	Plays     int64
}

// Attachment is an uploaded file as announced by the platform.
type Attachment struct {
	Filename    string
	ContentType string
	URL         string
	Size        int
}
