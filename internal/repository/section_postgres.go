package repository

import (
	"database/sql"
	"fmt"
)

type SectionPostgres struct {
	db *sql.DB
}

func NewSectionPostgres(db *sql.DB) *SectionPostgres {
	return &SectionPostgres{db: db}
}

func (r *SectionPostgres) Load(section string) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM config_sections WHERE section = $1`, section)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load section %s: %w", ErrStoreUnavailable, section, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan section %s: %w", ErrStoreUnavailable, section, err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read section %s: %w", ErrStoreUnavailable, section, err)
	}

	return values, nil
}

// Save rewrites the section inside one transaction.
func (r *SectionPostgres) Save(section string, values map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM config_sections WHERE section = $1`, section); err != nil {
		return fmt.Errorf("%w: failed to clear section %s: %w", ErrStoreUnavailable, section, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO config_sections (section, key, value) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %w", ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err := stmt.Exec(section, key, value); err != nil {
			return fmt.Errorf("%w: failed to save key %s: %w", ErrStoreUnavailable, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit section %s: %w", ErrStoreUnavailable, section, err)
	}
	return nil
}
