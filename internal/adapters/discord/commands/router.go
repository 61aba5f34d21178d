package commands

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

type CommandHandler func(s DiscordSession, i *discordgo.InteractionCreate)

type Router struct {
	routes map[string]CommandHandler
}

func NewRouter() *Router {
	slog.Info("Router initialized")
	return &Router{
		routes: make(map[string]CommandHandler),
	}
}

// Register binds a handler to a route: the command name, or
// "<command>/<subcommand>" for grouped commands.
func (r *Router) Register(route string, handler CommandHandler) {
	r.routes[route] = handler
}

func (r *Router) Handle(s DiscordSession, i *discordgo.InteractionCreate) {
	if !isCommandInteraction(i.Type) {
		return
	}

	route := routeOf(i.ApplicationCommandData())
	slog.Info("Router received interaction", "type", i.Type, "route", route)

	handler, ok := r.routes[route]
	if !ok {
		slog.Warn("No handler found for command", "route", route)
		return
	}

	handler(s, i)
}

func (r *Router) HandleFunc() func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.Handle(s, i)
	}
}

func routeOf(data discordgo.ApplicationCommandInteractionData) string {
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Name + "/" + data.Options[0].Name
	}
	return data.Name
}

func isCommandInteraction(t discordgo.InteractionType) bool {
	return t == discordgo.InteractionApplicationCommand ||
		t == discordgo.InteractionApplicationCommandAutocomplete
}
