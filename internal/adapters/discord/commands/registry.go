package commands

import (
	"github.com/bwmarrin/discordgo"
)

const GroupName = "sb"

const (
	SubList   = "list"
	SubUpload = "upload"
	SubPlay   = "play"
	SubStop   = "stop"
	SubTheme  = "theme"
	SubReload = "reload"
	SubTop    = "top"
)

func GetApplicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        GroupName,
			Description: "Soundboard commands",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand(SubList, "Lists all available sounds."),
				subcommand(SubUpload, "Upload a new sound file.",
					&discordgo.ApplicationCommandOption{
						Type:        discordgo.ApplicationCommandOptionAttachment,
						Name:        "file",
						Description: "The sound file to add.",
						Required:    true,
					},
				),
				subcommand(SubPlay, "Plays a sound in a voice channel.",
					stringOption("sound", "The sound to play.", true, true),
					userOption("target", "The user, in whose voice channel the sound should be played.", false),
				),
				subcommand(SubStop, "Stops current playback of sounds."),
				subcommand(SubTheme, "Manage user theme sounds.",
					userOption("target", "The user whose theme sound to set.", true),
					stringOption("sound", "The theme sound.", true, true),
				),
				subcommand(SubReload, "Reload available sounds from storage."),
				subcommand(SubTop, "Shows the most played sounds of this server."),
			},
		},
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func stringOption(name, description string, required, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: autocomplete,
	}
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// Route is the router key for a subcommand of the group.
func Route(sub string) string {
	return GroupName + "/" + sub
}
