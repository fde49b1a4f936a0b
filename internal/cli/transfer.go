package cli

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/storage"
)

// TransferCmd copies every feeding into another store, e.g. from the local
// SQLite file to a PostgreSQL server. Rows whose id already exists in the
// target are left alone.
type TransferCmd struct {
	To string `arg:"" help:"Target SQLite path or PostgreSQL connection string."`
}

func (c *TransferCmd) Run(ctx *Context) error {
	target, err := storage.New(c.To)
	if err != nil {
		return err
	}
	if err := target.Init(); err != nil {
		return fmt.Errorf("failed to initialize target: %w", err)
	}
	defer target.Close()

	bg := context.Background()
	feedings, err := ctx.Store.AllFeedings(bg)
	if err != nil {
		return err
	}

	copied, skipped := 0, 0
	for _, f := range feedings {
		_, err := target.GetFeeding(bg, f.ID)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, apperrors.ErrNotFound):
			return fmt.Errorf("failed to check target for feeding %s: %w", f.ID, err)
		}
		if err := target.InsertFeeding(bg, f); err != nil {
			return fmt.Errorf("failed to copy feeding %s: %w", f.ID, err)
		}
		copied++
	}

	ctx.printf("✓ Copied %d feeding(s) to %s", copied, target.GetConfigPath())
	if skipped > 0 {
		ctx.printf(" (%d already present)", skipped)
	}
	ctx.println()
	return nil
}
