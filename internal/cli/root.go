// Package cli holds the kong command implementations.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/feedlog/internal/backup"
	"github.com/julianstephens/feedlog/internal/config"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/storage"
)

// Context is passed to every command's Run method.
type Context struct {
	Store   storage.Provider
	Service *feeding.Service
	Config  *config.Config
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PerformAutomaticBackup snapshots a SQLite store before long-running
// sessions. Failures are logged, never returned.
func (c *Context) PerformAutomaticBackup() {
	if !storage.IsSQLite(c.Store) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
