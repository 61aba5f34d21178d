package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewRouter(t *testing.T) {
	router := NewRouter()

	if router == nil {
		t.Fatal("expected non-nil router")
	}
	if router.routes == nil {
		t.Fatal("expected routes map to be initialized")
	}
	if len(router.routes) != 0 {
		t.Errorf("expected empty routes, got %d", len(router.routes))
	}
}

func TestRouter_Register_OverwritesPrevious(t *testing.T) {
	router := NewRouter()

	firstCalled := false
	secondCalled := false

	router.Register("cmd", func(s DiscordSession, i *discordgo.InteractionCreate) {
		firstCalled = true
	})
	router.Register("cmd", func(s DiscordSession, i *discordgo.InteractionCreate) {
		secondCalled = true
	})

	router.routes["cmd"](nil, nil)

	if firstCalled {
		t.Error("first handler should be overwritten")
	}
	if !secondCalled {
		t.Error("second handler should be called")
	}
}

func TestRouter_Handle_DispatchesSubcommand(t *testing.T) {
	router := NewRouter()
	session := &mockDiscordSession{}

	var called string
	router.Register(Route(SubPlay), func(s DiscordSession, i *discordgo.InteractionCreate) {
		called = "play"
	})
	router.Register(Route(SubStop), func(s DiscordSession, i *discordgo.InteractionCreate) {
		called = "stop"
	})

	router.Handle(session, subInteraction(discordgo.InteractionApplicationCommand, SubStop))
	if called != "stop" {
		t.Errorf("expected stop handler, got %q", called)
	}

	router.Handle(session, subInteraction(discordgo.InteractionApplicationCommandAutocomplete, SubPlay))
	if called != "play" {
		t.Errorf("expected autocomplete to reach play handler, got %q", called)
	}
}

func TestRouter_Handle_PlainCommand(t *testing.T) {
	router := NewRouter()
	called := false
	router.Register("ping", func(s DiscordSession, i *discordgo.InteractionCreate) {
		called = true
	})

	router.Handle(&mockDiscordSession{}, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{Name: "ping"},
		},
	})

	if !called {
		t.Error("expected plain command to be dispatched")
	}
}

func TestRouter_Handle_UnknownRoute(t *testing.T) {
	router := NewRouter()
	session := &mockDiscordSession{}

	router.Handle(session, subInteraction(discordgo.InteractionApplicationCommand, "unknown"))

	if session.lastInteractionResponse != nil {
		t.Error("expected no response for unknown route")
	}
}

func TestRouter_Handle_IgnoresNonCommandInteractions(t *testing.T) {
	router := NewRouter()
	called := false
	router.Register(Route(SubList), func(s DiscordSession, i *discordgo.InteractionCreate) {
		called = true
	})

	for _, typ := range []discordgo.InteractionType{discordgo.InteractionPing, discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit} {
		router.Handle(&mockDiscordSession{}, &discordgo.InteractionCreate{
			Interaction: &discordgo.Interaction{Type: typ},
		})
	}

	if called {
		t.Error("non-command interactions must not be dispatched")
	}
}
