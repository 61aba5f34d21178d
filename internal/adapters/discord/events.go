package discord

import (
	"context"
	"log/slog"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/formatting"

	"github.com/bwmarrin/discordgo"
)

type VoiceEventHandler interface {
	HandleVoiceStateChange(ctx context.Context, change domain.VoiceStateChange)
}

type GuildSyncer interface {
	SyncGuild(ctx context.Context, guildID string) error
}

// Events translates gateway events into soundboard calls.
type Events struct {
	ctx      context.Context
	voice    VoiceEventHandler
	registry GuildSyncer
}

func NewEvents(ctx context.Context, voice VoiceEventHandler, registry GuildSyncer) *Events {
	return &Events{ctx: ctx, voice: voice, registry: registry}
}

func (e *Events) Ready(s *discordgo.Session, r *discordgo.Ready) {
	e.handleReady(r)
}

func (e *Events) handleReady(r *discordgo.Ready) {
	guildIDs := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}

	slog.Info("Soundboard is online!", "user", r.User.Username, "guilds", guildIDs)
	slog.Info("Invite the bot", "url", formatting.MsgInviteURL(r.User.ID))
}

func (e *Events) VoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	e.handleVoiceStateUpdate(botID, v)
}

func (e *Events) handleVoiceStateUpdate(botID string, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil {
		return
	}

	change := domain.VoiceStateChange{
		GuildID:        v.GuildID,
		UserID:         v.UserID,
		AfterChannelID: v.ChannelID,
		Self:           botID != "" && v.UserID == botID,
	}
	if v.BeforeUpdate != nil {
		change.BeforeChannelID = v.BeforeUpdate.ChannelID
	}

	e.voice.HandleVoiceStateChange(e.ctx, change)
}

func (e *Events) GuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	e.handleGuildCreate(g)
}

func (e *Events) handleGuildCreate(g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	if err := e.registry.SyncGuild(e.ctx, g.ID); err != nil {
		slog.Debug("Guild command sync did not complete", "guild_id", g.ID, "error", err)
	}
}
