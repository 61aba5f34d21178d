package commands

import (
	"context"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/services/soundboard"

	"github.com/bwmarrin/discordgo"
)

type mockDiscordSession struct {
	interactionRespondFunc func(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error

	responses               []*discordgo.InteractionResponse
	lastInteractionResponse *discordgo.InteractionResponse
	lastEdit                *discordgo.WebhookEdit
}

func (m *mockDiscordSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error {
	m.responses = append(m.responses, resp)
	m.lastInteractionResponse = resp
	if m.interactionRespondFunc != nil {
		return m.interactionRespondFunc(interaction, resp)
	}
	return nil
}

func (m *mockDiscordSession) InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.lastEdit = newresp
	return &discordgo.Message{}, nil
}

func (m *mockDiscordSession) editedContent() string {
	if m.lastEdit == nil || m.lastEdit.Content == nil {
		return ""
	}
	return *m.lastEdit.Content
}

type mockSoundboard struct {
	listFunc         func() string
	autocompleteFunc func(query string) []string
	uploadFunc       func(ctx context.Context, att domain.Attachment) string
	playFunc         func(ctx context.Context, req soundboard.PlayRequest) string
	stopFunc         func(guildID string) string
	reloadFunc       func(ctx context.Context) string
	topFunc          func(ctx context.Context, guildID string) string
	themeFunc        func(ctx context.Context, guildID, targetID, soundName string) string
}

func (m *mockSoundboard) List() string {
	if m.listFunc != nil {
		return m.listFunc()
	}
	return ""
}

func (m *mockSoundboard) Autocomplete(query string) []string {
	if m.autocompleteFunc != nil {
		return m.autocompleteFunc(query)
	}
	return nil
}

func (m *mockSoundboard) Upload(ctx context.Context, att domain.Attachment) string {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, att)
	}
	return ""
}

func (m *mockSoundboard) Play(ctx context.Context, req soundboard.PlayRequest) string {
	if m.playFunc != nil {
		return m.playFunc(ctx, req)
	}
	return ""
}

func (m *mockSoundboard) Stop(guildID string) string {
	if m.stopFunc != nil {
		return m.stopFunc(guildID)
	}
	return ""
}

func (m *mockSoundboard) Reload(ctx context.Context) string {
	if m.reloadFunc != nil {
		return m.reloadFunc(ctx)
	}
	return ""
}

func (m *mockSoundboard) Top(ctx context.Context, guildID string) string {
	if m.topFunc != nil {
		return m.topFunc(ctx, guildID)
	}
	return ""
}

func (m *mockSoundboard) ManageTheme(ctx context.Context, guildID, targetID, soundName string) string {
	if m.themeFunc != nil {
		return m.themeFunc(ctx, guildID, targetID, soundName)
	}
	return ""
}

// subInteraction builds a guild interaction for /sb <sub> with options.
func subInteraction(t discordgo.InteractionType, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    t,
			GuildID: "guild1",
			Member:  &discordgo.Member{User: &discordgo.User{ID: "user1"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name: GroupName,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Type:    discordgo.ApplicationCommandOptionSubCommand,
						Name:    sub,
						Options: opts,
					},
				},
			},
		},
	}
}

func stringOpt(name, value string, focused bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:    discordgo.ApplicationCommandOptionString,
		Name:    name,
		Value:   value,
		Focused: focused,
	}
}

func userOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Type:  discordgo.ApplicationCommandOptionUser,
		Name:  name,
		Value: id,
	}
}
