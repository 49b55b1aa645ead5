package discord

import (
	"fmt"
	"strconv"

	"mcdiscord/internal/models"

	"github.com/bwmarrin/discordgo"
)

// interactionUser returns the invoking user for guild and DM interactions.
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func parseUserID(user *discordgo.User) (int64, error) {
	if user == nil {
		return 0, fmt.Errorf("no user")
	}
	return strconv.ParseInt(user.ID, 10, 64)
}

func linkEmbed(title string, pair models.UserPair, online bool) *discordgo.MessageEmbed {
	status := "Offline"
	if online {
		status = "Online"
	}
	player := pair.Player().String()

	return &discordgo.MessageEmbed{
		Title: title,
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Discord", Value: fmt.Sprintf("<@%d>", pair.UserID()), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Player UUID", Value: "`" + player + "`", Inline: false},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: fmt.Sprintf(avatarURLFormat, player)},
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func notLinkedEmbed(userID int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("<@%d> has not linked a Minecraft account.", userID),
		Color:       colorGray,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	}
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}
}
