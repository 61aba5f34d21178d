package commands

import (
	"log/slog"

	"soundboard-bot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

// maxChoiceLength is the platform limit for autocomplete choice names.
const maxChoiceLength = 100

func respond(s DiscordSession, i *discordgo.InteractionCreate, msg string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   flags,
		},
	})
	if err != nil {
		slog.Error("Failed to respond to interaction", "error", err)
	}
}

// deferResponse acknowledges the interaction so slow work can finish with
// followUp.
func deferResponse(s DiscordSession, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func followUp(s DiscordSession, i *discordgo.InteractionCreate, msg string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg}); err != nil {
		slog.Error("Failed to edit interaction response", "error", err)
	}
}

func respondAutocomplete(s DiscordSession, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

func buildChoices(names []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		if len(name) > maxChoiceLength {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	return choices
}

// subcommandOptions returns the options of the invoked subcommand, or the
// top-level options for plain commands.
func subcommandOptions(i *discordgo.InteractionCreate) []*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	if len(opts) > 0 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return opts[0].Options
	}
	return opts
}

func getStringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// getUserOption returns the user ID of a user option.
func getUserOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name != name {
			continue
		}
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}

func getAttachmentOption(i *discordgo.InteractionCreate, name string) (domain.Attachment, bool) {
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		return domain.Attachment{}, false
	}
	for _, opt := range subcommandOptions(i) {
		if opt.Name != name {
			continue
		}
		id, ok := opt.Value.(string)
		if !ok {
			return domain.Attachment{}, false
		}
		att, ok := data.Resolved.Attachments[id]
		if !ok || att == nil {
			return domain.Attachment{}, false
		}
		return domain.Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			URL:         att.URL,
			Size:        att.Size,
		}, true
	}
	return domain.Attachment{}, false
}

func getFocusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range opts {
		if opt.Focused {
			return opt.StringValue()
		}
	}
	return ""
}

func invokerID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
