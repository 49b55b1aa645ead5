package discord

import "github.com/bwmarrin/discordgo"

func (b *Bot) addCommands(commands ...*discordgo.ApplicationCommand) {
	b.commands = append(b.commands, commands...)
}

func (b *Bot) newLinkCommand() *discordgo.ApplicationCommand {
	minCode, maxCode := float64(100000), float64(999999)
	return &discordgo.ApplicationCommand{
		Name:        "link",
		Description: "Link your Discord account to your Minecraft player",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "code",
				Description: "Code shown by /link in game",
				Required:    true,
				MinValue:    &minCode,
				MaxValue:    maxCode,
			},
		},
	}
}

func (b *Bot) newUnlinkCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "unlink",
		Description: "Unlink your Minecraft player (admins may unlink another user)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to unlink (admins only)", Required: false},
		},
	}
}

func (b *Bot) newWhoisCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "whois",
		Description: "Show the Minecraft player linked to a user",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Discord user", Required: true},
		},
	}
}

func (b *Bot) newExportLinksCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "export_links",
		Description: "Export all linked accounts to Excel (admins only)",
	}
}
