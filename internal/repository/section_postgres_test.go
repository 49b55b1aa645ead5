package repository

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionPostgres_SaveAndLoad(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	db, err := openPostgres(dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db, os.DirFS("../../cmd/app"), "migrations"))

	store := NewSectionPostgres(db)
	section := "accounts_test"
	t.Cleanup(func() {
		db.Exec(`DELETE FROM config_sections WHERE section = $1`, section)
	})

	require.NoError(t, store.Save(section, map[string]string{"1": "a", "2": "b"}))
	require.NoError(t, store.Save(section, map[string]string{"3": "c"}))

	got, err := store.Load(section)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"3": "c"}, got)

	empty, err := store.Load("missing_section")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
