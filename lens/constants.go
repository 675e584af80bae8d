// Package lens holds shared defaults for the entitylens module.
package lens

const (
	DefaultAppName    = "entitylens"
	DefaultConfigPath = "/etc/entitylens"

	// DefaultDirectoryDriver selects the in-memory directory unless a libsql
	// path is configured.
	DefaultDirectoryDriver = "memory"
	DefaultDatabasePath    = "data/entitylens.db"
	DefaultWatchlistPath   = "kb/name_watchlist.json"
)
