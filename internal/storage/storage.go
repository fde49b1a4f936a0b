package storage

import (
	"github.com/julianstephens/feedlog/internal/storage/postgres"
	"github.com/julianstephens/feedlog/internal/storage/sqlite"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Migrator = (*sqlite.Store)(nil)
	_ Migrator = (*postgres.Store)(nil)
)

// New picks the backend from the DSN: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is a SQLite file path. PostgreSQL DSNs carrying a
// password are rejected; use the OS keyring or .pgpass instead.
func New(dsn string) (Provider, error) {
	if postgres.IsConnString(dsn) {
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	}
	return sqlite.NewStore(dsn), nil
}

// NewTrusted is New without the credential check, for connection strings
// read back from the OS keyring.
func NewTrusted(dsn string) Provider {
	if postgres.IsConnString(dsn) {
		return postgres.New(dsn)
	}
	return sqlite.NewStore(dsn)
}

// IsSQLite reports whether p is backed by a SQLite file.
func IsSQLite(p Provider) bool {
	_, ok := p.(*sqlite.Store)
	return ok
}
