package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mcdiscord/internal/application"
	"mcdiscord/pkg/config"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	session  *discordgo.Session
	services *application.Service
	logger   application.Logger

	guildID          string
	connectionRoleID string
	adminIDs         map[string]struct{}
	commands         []*discordgo.ApplicationCommand
}

func NewBot(cfg *config.Config, services *application.Service, logger application.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds

	admins := make(map[string]struct{})
	for _, id := range cfg.AdminUserIDs {
		cleanID := strings.TrimSpace(id)
		if cleanID != "" {
			admins[cleanID] = struct{}{}
		}
	}

	b := &Bot{
		session:          s,
		services:         services,
		logger:           logger,
		guildID:          cfg.GuildID,
		connectionRoleID: cfg.ConnectionRoleID,
		adminIDs:         admins,
	}
	b.addCommands(
		b.newLinkCommand(),
		b.newUnlinkCommand(),
		b.newWhoisCommand(),
		b.newExportLinksCommand(),
	)
	return b, nil
}

func (b *Bot) Init() error {
	b.session.AddHandler(b.onInteraction)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("Discord Bot Started. Registering slash commands...")

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, b.commands)
	if err != nil {
		b.logger.Error("Failed to register commands: %v", err)
		return
	}
	b.logger.Info("Slash commands registered successfully")
}

func (b *Bot) Stop() {
	if cleared := b.services.Connections.ClearRoles(); cleared > 0 {
		b.logger.Info("Removed connection role from %d online players", cleared)
	}
	if err := b.session.Close(); err != nil {
		b.logger.Warn("Failed to close discord session: %v", err)
	}
}

// AddConnectionRole implements application.RoleAssigner.
func (b *Bot) AddConnectionRole(userID int64) error {
	if b.connectionRoleID == "" || b.guildID == "" {
		return nil
	}
	err := b.session.GuildMemberRoleAdd(b.guildID, strconv.FormatInt(userID, 10), b.connectionRoleID)
	return describeRESTError(err)
}

// RemoveConnectionRole implements application.RoleAssigner.
func (b *Bot) RemoveConnectionRole(userID int64) error {
	if b.connectionRoleID == "" || b.guildID == "" {
		return nil
	}
	err := b.session.GuildMemberRoleRemove(b.guildID, strconv.FormatInt(userID, 10), b.connectionRoleID)
	return describeRESTError(err)
}

func describeRESTError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("bot role must be above the connection role and have Manage Roles: %w", err)
		case discordgo.ErrCodeUnknownMember:
			return nil
		}
	}
	return err
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "link":
		b.handleLink(s, i.Interaction)
	case "unlink":
		b.handleUnlink(s, i.Interaction)
	case "whois":
		b.handleWhois(s, i.Interaction)
	case "export_links":
		b.ensureAdmin(s, i.Interaction, b.handleExportLinks)
	}
}
