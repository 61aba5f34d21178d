package commands

import (
	"soundboard-bot/internal/formatting"

	"github.com/bwmarrin/discordgo"
)

type Middleware func(CommandHandler) CommandHandler

// WithGuild rejects interactions that were not sent from a guild member.
func WithGuild(next CommandHandler) CommandHandler {
	return func(s DiscordSession, i *discordgo.InteractionCreate) {
		if i.GuildID == "" || i.Member == nil {
			if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
				return
			}
			respond(s, i, formatting.MsgGuildOnly, true)
			return
		}
		next(s, i)
	}
}
