// Package keyring keeps the PostgreSQL connection string in the OS keyring so
// the config file never has to carry credentials.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/storage/postgres"
)

const probeUser = "availability-probe"

var (
	ErrNotFound    = errors.New("no connection string stored in keyring")
	ErrUnavailable = errors.New("OS keyring is not available")
)

// GetConnectionString returns the stored DSN or ErrNotFound.
func GetConnectionString() (string, error) {
	dsn, err := gokeyring.Get(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case errors.Is(err, gokeyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return dsn, nil
}

// SetConnectionString stores dsn after checking that it is a PostgreSQL
// connection string pq can parse.
func SetConnectionString(dsn string) error {
	if dsn == "" {
		return errors.New("connection string cannot be empty")
	}
	if !postgres.IsConnString(dsn) {
		return fmt.Errorf("%w: only PostgreSQL connection strings belong in the keyring", postgres.ErrInvalidConnectionString)
	}
	if err := gokeyring.Set(constants.AppName, constants.DefaultKeyringUser, dsn); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the stored DSN. Returns ErrNotFound when
// nothing was stored.
func DeleteConnectionString() error {
	err := gokeyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	switch {
	case errors.Is(err, gokeyring.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// IsAvailable probes the keyring with a read. A not-found answer still means
// the backend is reachable.
func IsAvailable() bool {
	_, err := gokeyring.Get(constants.AppName, probeUser)
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}
