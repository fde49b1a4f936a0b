package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/feedlog/internal/constants"
)

type FeedCmd struct {
	JSON bool `help:"Print the result as JSON."`
}

func (c *FeedCmd) Run(ctx *Context) error {
	res, err := ctx.Service.Append(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.printJSON(res)
	}

	ctx.printf("✓ %s (%s)\n", res.Message, res.ID)
	ctx.printf("  Today: %d / %d\n", res.Count, res.Limit)
	if res.Count > res.Limit {
		ctx.printf("  ⚠ Over the daily limit of %d\n", res.Limit)
	}
	return nil
}

type TodayCmd struct {
	JSON bool `help:"Print the summary as JSON."`
}

func (c *TodayCmd) Run(ctx *Context) error {
	summary, err := ctx.Service.Today(context.Background())
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.printJSON(summary)
	}

	w := ctx.Service.Calendar().Current()
	ctx.printf("Day of %s (since %s)\n", w.Key(), w.Start.Format(constants.DateTimeFormat))
	ctx.printf("Feedings: %d / %d\n", summary.Count, summary.Limit)
	if summary.Latest != nil {
		ctx.printf("Latest:   %s\n", *summary.Latest)
	} else {
		ctx.println("Latest:   none yet")
	}
	return nil
}

type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Reset today's feedings?").
			Description("Every feeding since the start of the current day will be deleted.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.println("Reset cancelled.")
			return nil
		}
	}

	res, err := ctx.Service.ResetToday(context.Background())
	if err != nil {
		return err
	}
	ctx.printf("✓ %s (%d removed)\n", res.Message, res.Deleted)
	return nil
}

type EditCmd struct {
	ID   string `arg:"" help:"Feeding ID."`
	Time string `arg:"" help:"New feeding time (YYYY-MM-DD HH:MM:SS)."`
}

func (c *EditCmd) Run(ctx *Context) error {
	res, err := ctx.Service.Edit(context.Background(), c.ID, c.Time)
	if err != nil {
		return err
	}
	if res.Updated == 0 {
		ctx.printf("⚠ %s\n", res.Message)
		return nil
	}
	ctx.printf("✓ %s\n", res.Message)
	return nil
}

type DeleteCmd struct {
	ID string `arg:"" help:"Feeding ID."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	res, err := ctx.Service.Delete(context.Background(), c.ID)
	if err != nil {
		return err
	}
	if res.Deleted == 0 {
		ctx.printf("No feeding with ID %s; nothing to delete.\n", c.ID)
		return nil
	}
	ctx.printf("✓ %s\n", res.Message)
	return nil
}

// formatCount renders n against the limit, e.g. "4/6".
func formatCount(n, limit int) string {
	return fmt.Sprintf("%d/%d", n, limit)
}
