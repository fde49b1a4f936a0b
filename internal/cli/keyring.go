package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/feedlog/internal/config"
	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/keyring"
	"github.com/julianstephens/feedlog/internal/storage/postgres"
)

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so a password is acceptable here
		ctx.println("⚠ Connection string contains a password; it will be stored as-is in the OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return err
	}

	ctx.println("✓ Connection string stored in OS keyring")
	ctx.printf("  Set database: %s in your config (or FEEDLOG_DATABASE=%s) to use it.\n", config.KeyringDatabase, config.KeyringDatabase)
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	dsn, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("no connection string in keyring; use '%s keyring set' to store one", constants.AppName)
	}
	if err != nil {
		return err
	}
	ctx.println(maskPassword(dsn))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.println("No connection string stored in keyring.")
			return nil
		}
		return err
	}
	ctx.println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyringAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return keyring.ErrUnavailable
	}
	ctx.println("✓ OS keyring is available")
	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.println("✓ Connection string is stored in keyring")
	} else {
		ctx.println("ℹ No connection string stored in keyring")
	}
	return nil
}

// maskPassword hides the password of a URL or key=value DSN.
func maskPassword(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			return strings.Replace(u.String(), "xxxxx", "****", 1)
		}
		return dsn
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
