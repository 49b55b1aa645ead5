package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrStoreUnavailable is returned when a section cannot be read or written.
var ErrStoreUnavailable = errors.New("config store unavailable")

// ConfigStore persists flat string maps under a section name. Save replaces
// the whole section.
type ConfigStore interface {
	Load(section string) (map[string]string, error)
	Save(section string, values map[string]string) error
}

type Repository struct {
	ConfigStore
	db *sql.DB
}

// NewRepository picks the store for cfg.Driver. db is only used by the
// postgres driver and may be nil otherwise.
func NewRepository(cfg *Config, db *sql.DB) (*Repository, error) {
	switch cfg.Driver {
	case DriverYAML, "":
		return &Repository{ConfigStore: NewSectionFile(cfg.FilePath)}, nil
	case DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		return &Repository{ConfigStore: NewSectionPostgres(db), db: db}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Close releases the database connection of the postgres store.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
