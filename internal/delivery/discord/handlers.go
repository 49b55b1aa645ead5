package discord

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"mcdiscord/internal/application"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleLink(s *discordgo.Session, i *discordgo.Interaction) {
	user := interactionUser(i)
	userID, err := parseUserID(user)
	if err != nil {
		b.respondMessage(s, i, "Could not read your Discord account.", true)
		return
	}

	code := int(i.ApplicationCommandData().Options[0].IntValue())
	pair, err := b.services.Links.ConfirmLink(userID, code)
	if err != nil {
		b.respondEmbed(s, i, errorEmbed(linkErrorMessage(err)), true)
		return
	}

	b.respondEmbed(s, i, linkEmbed("Account linked", pair, b.services.Connections.IsOnline(pair.Player())), true)
}

func (b *Bot) handleUnlink(s *discordgo.Session, i *discordgo.Interaction) {
	caller := interactionUser(i)
	target := caller

	options := i.ApplicationCommandData().Options
	if len(options) > 0 {
		other := options[0].UserValue(s)
		if other != nil && (caller == nil || other.ID != caller.ID) {
			if caller == nil || !b.isAdmin(caller.ID) {
				b.respondMessage(s, i, "Only admins can unlink other users.", true)
				return
			}
			target = other
		}
	}

	userID, err := parseUserID(target)
	if err != nil {
		b.respondMessage(s, i, "Could not read the Discord account.", true)
		return
	}

	pair := b.services.Links.UnlinkUser(userID)
	if pair.Empty() {
		b.respondMessage(s, i, fmt.Sprintf("<@%d> has no linked Minecraft account.", userID), true)
		return
	}

	b.respondMessage(s, i, fmt.Sprintf("Unlinked <@%d> from `%s`.", userID, pair.Player()), true)
}

func (b *Bot) handleWhois(s *discordgo.Session, i *discordgo.Interaction) {
	user := i.ApplicationCommandData().Options[0].UserValue(s)
	userID, err := parseUserID(user)
	if err != nil {
		b.respondMessage(s, i, "Unknown user.", true)
		return
	}

	pair := b.services.Links.LookupUser(userID)
	if pair.Empty() {
		b.respondEmbed(s, i, notLinkedEmbed(userID), false)
		return
	}

	b.respondEmbed(s, i, linkEmbed("Linked account", pair, b.services.Connections.IsOnline(pair.Player())), false)
}

func (b *Bot) handleExportLinks(s *discordgo.Session, i *discordgo.Interaction) {
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})

	data, err := b.services.Export.ExportLinks()
	if err != nil {
		b.logger.Error("Export error: %v", err)
		s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
			Content: &[]string{"Export failed: " + err.Error()}[0],
		})
		return
	}

	name := fmt.Sprintf("links-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &[]string{"Your export is ready."}[0],
		Files: []*discordgo.File{
			{Name: name, Reader: bytes.NewReader(data)},
		},
	})
}

func linkErrorMessage(err error) string {
	switch {
	case errors.Is(err, application.ErrInvalidCode):
		return "That code is not valid. Run /link in game to get a new one."
	case errors.Is(err, application.ErrUserLinked):
		return "Your Discord account is already linked. Use /unlink first."
	default:
		return "Something went wrong, try again later."
	}
}
