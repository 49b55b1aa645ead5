package discord

const (
	// Embed colors
	colorGreen = 0x2ECC71 // Linked
	colorRed   = 0xE74C3C // Errors
	colorGray  = 0x95A5A6 // Not linked
	colorBlue  = 0x3498DB // Info

	footerText = "Minecraft account link"

	// Minotar renders the player head from the uuid
	avatarURLFormat = "https://minotar.net/helm/%s/64.png"
)
