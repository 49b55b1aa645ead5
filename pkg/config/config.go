package config

import (
	"mcdiscord/internal/application"
	"mcdiscord/internal/delivery/api"
	"mcdiscord/internal/repository"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Repo         repository.Config          `envPrefix:"STORE_"`
	Links        application.RegistryConfig `envPrefix:"LINK_"`
	API          api.Config                 `envPrefix:"HTTP_"`
	DiscordToken string                     `env:"DISCORD_TOKEN" envDefault:""`
	LogLevel     string                     `env:"LOGGER_LEVEL" envDefault:"debug"`

	GuildID          string   `env:"DISCORD_GUILD_ID" envDefault:""`
	ConnectionRoleID string   `env:"DISCORD_CONNECTION_ROLE_ID" envDefault:""`
	AdminUserIDs     []string `env:"ADMIN_USER_IDS" envSeparator:"," envDefault:""`
}

func ReadEnvConfig(cfg *Config) error {
	return env.Parse(cfg)
}
