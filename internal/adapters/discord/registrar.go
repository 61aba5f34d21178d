package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"soundboard-bot/internal/core/domain"
	"soundboard-bot/internal/core/ports"

	"github.com/bwmarrin/discordgo"
)

type CommandSession interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// CommandRegistrar replaces the application's command set in one call per
// scope, so stale commands from earlier versions disappear.
type CommandRegistrar struct {
	session  CommandSession
	appID    func() string
	commands []*discordgo.ApplicationCommand
}

var _ ports.CommandRegistrar = (*CommandRegistrar)(nil)

// NewCommandRegistrar resolves the application ID lazily since it is only
// known once the gateway session is ready.
func NewCommandRegistrar(session CommandSession, appID func() string, commands []*discordgo.ApplicationCommand) *CommandRegistrar {
	return &CommandRegistrar{session: session, appID: appID, commands: commands}
}

func (r *CommandRegistrar) ClearGlobalCommands(ctx context.Context) error {
	_, err := r.session.ApplicationCommandBulkOverwrite(r.appID(), "", []*discordgo.ApplicationCommand{}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("clear global commands: %w", translateRESTError(err))
	}
	return nil
}

func (r *CommandRegistrar) SyncGuildCommands(ctx context.Context, guildID string) error {
	_, err := r.session.ApplicationCommandBulkOverwrite(r.appID(), guildID, r.commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sync commands to guild %s: %w", guildID, translateRESTError(err))
	}
	return nil
}

func translateRESTError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	}
	return err
}
