package commands

import (
	"context"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/services/soundboard"

	"github.com/bwmarrin/discordgo"
)

type DiscordSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Soundboard is the command surface of the playback orchestrator. Every
// method returns the reply shown to the invoking user.
type Soundboard interface {
	List() string
	Autocomplete(query string) []string
	Upload(ctx context.Context, att domain.Attachment) string
	Play(ctx context.Context, req soundboard.PlayRequest) string
	Stop(guildID string) string
	Reload(ctx context.Context) string
	Top(ctx context.Context, guildID string) string
	ManageTheme(ctx context.Context, guildID, targetID, soundName string) string
}
