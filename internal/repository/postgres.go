package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const (
	DriverYAML     = "yaml"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver   string `env:"DRIVER" envDefault:"yaml"`
	FilePath string `env:"FILE_PATH" envDefault:"data/links.yml"`

	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	Username string `env:"DB_USERNAME"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode)
}

func NewPostgresDB(cfg *Config) (*sql.DB, error) {
	return openPostgres(cfg.DSN())
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
