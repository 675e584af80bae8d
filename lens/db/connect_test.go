package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectToDB_CreatesFileAndProbes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entitylens.db")

	conn, err := ConnectToDB(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file created on first connect")

	var probe int
	require.NoError(t, conn.QueryRow("SELECT 1").Scan(&probe))
	assert.Equal(t, 1, probe)
}

func TestConnectToDB_ReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entitylens.db")

	first, err := ConnectToDB(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = first.Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := ConnectToDB(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	var name string
	err = second.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'probe'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "probe", name)
}
