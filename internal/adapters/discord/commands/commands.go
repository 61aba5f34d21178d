package commands

import (
	"context"
	"log/slog"
	"time"

	"soundboard-bot/internal/core/services/soundboard"
	"soundboard-bot/internal/formatting"

	"github.com/bwmarrin/discordgo"
)

const DefaultTimeout = 30 * time.Second

type BotHandler struct {
	Soundboard Soundboard
	Timeout    time.Duration
}

// Register binds every subcommand of the group to the router.
func (h *BotHandler) Register(r *Router) {
	r.Register(Route(SubList), WithGuild(h.List))
	r.Register(Route(SubUpload), WithGuild(h.Upload))
	r.Register(Route(SubPlay), WithGuild(h.Play))
	r.Register(Route(SubStop), WithGuild(h.Stop))
	r.Register(Route(SubTheme), WithGuild(h.Theme))
	r.Register(Route(SubReload), WithGuild(h.Reload))
	r.Register(Route(SubTop), WithGuild(h.Top))
}

func (h *BotHandler) context() (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (h *BotHandler) List(s DiscordSession, i *discordgo.InteractionCreate) {
	respond(s, i, h.Soundboard.List(), true)
}

func (h *BotHandler) Upload(s DiscordSession, i *discordgo.InteractionCreate) {
	att, ok := getAttachmentOption(i, "file")
	if !ok {
		respond(s, i, formatting.MsgAttachmentRequired, true)
		return
	}

	if err := deferResponse(s, i); err != nil {
		slog.Error("Failed to defer interaction response", "error", err)
		return
	}

	ctx, cancel := h.context()
	defer cancel()
	followUp(s, i, h.Soundboard.Upload(ctx, att))
}

func (h *BotHandler) Play(s DiscordSession, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		h.handleSoundAutocomplete(s, i)
		return
	}

	opts := subcommandOptions(i)
	req := soundboard.PlayRequest{
		GuildID:     i.GuildID,
		RequesterID: invokerID(i),
		TargetID:    getUserOption(opts, "target"),
		SoundName:   getStringOption(opts, "sound"),
	}
	if req.SoundName == "" {
		respond(s, i, formatting.MsgSoundRequired, true)
		return
	}

	if err := deferResponse(s, i); err != nil {
		slog.Error("Failed to defer interaction response", "error", err)
		return
	}

	ctx, cancel := h.context()
	defer cancel()
	followUp(s, i, h.Soundboard.Play(ctx, req))
}

func (h *BotHandler) Stop(s DiscordSession, i *discordgo.InteractionCreate) {
	respond(s, i, h.Soundboard.Stop(i.GuildID), true)
}

func (h *BotHandler) Theme(s DiscordSession, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		h.handleSoundAutocomplete(s, i)
		return
	}

	opts := subcommandOptions(i)
	target := getUserOption(opts, "target")
	sound := getStringOption(opts, "sound")
	if target == "" || sound == "" {
		respond(s, i, formatting.MsgSoundRequired, true)
		return
	}

	ctx, cancel := h.context()
	defer cancel()
	respond(s, i, h.Soundboard.ManageTheme(ctx, i.GuildID, target, sound), true)
}

func (h *BotHandler) Reload(s DiscordSession, i *discordgo.InteractionCreate) {
	ctx, cancel := h.context()
	defer cancel()
	respond(s, i, h.Soundboard.Reload(ctx), true)
}

func (h *BotHandler) Top(s DiscordSession, i *discordgo.InteractionCreate) {
	ctx, cancel := h.context()
	defer cancel()
	respond(s, i, h.Soundboard.Top(ctx, i.GuildID), true)
}

func (h *BotHandler) handleSoundAutocomplete(s DiscordSession, i *discordgo.InteractionCreate) {
	query := getFocusedOption(subcommandOptions(i))
	choices := buildChoices(h.Soundboard.Autocomplete(query))
	if err := respondAutocomplete(s, i, choices); err != nil {
		slog.Error("Failed to send autocomplete response", "error", err)
	}
}
