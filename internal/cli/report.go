package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/export"
	"github.com/julianstephens/feedlog/internal/tui/components/grid"
)

type WeekCmd struct {
	Start string `help:"First day of the report (YYYY-MM-DD). Defaults to the week ending today."`
	JSON  bool   `help:"Print the report as JSON."`
}

func (c *WeekCmd) Run(ctx *Context) error {
	report, err := ctx.Service.Weekly(context.Background(), c.Start)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.printJSON(report)
	}

	limit := ctx.Service.Options().DailyLimit
	for _, d := range report.Days {
		times := make([]string, len(d.Records))
		for i, r := range d.Records {
			times[i] = r.Time
		}
		marker := "  "
		if report.IsUnderfed(d.Date) {
			marker = "⚠ "
		}
		ctx.printf("%s%s  %-5s  %s\n", marker, d.Date, formatCount(d.Count, limit), strings.Join(times, " "))
	}
	ctx.println()
	ctx.printf("Total: %d  Daily average: %.2f\n", report.Total(), report.Avg)
	if len(report.UnderfedDays) > 0 {
		ctx.printf("Underfed: %s\n", strings.Join(report.UnderfedDays, ", "))
	}
	return nil
}

type TimelineCmd struct {
	Start string `help:"First day of the grid (YYYY-MM-DD). Defaults to the week ending today."`
	JSON  bool   `help:"Print the timeline as JSON."`
}

func (c *TimelineCmd) Run(ctx *Context) error {
	tl, err := ctx.Service.Timeline(context.Background(), c.Start)
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.printJSON(tl)
	}

	threshold := ctx.Service.Options().UnderfedThreshold
	underfed := map[string]bool{}
	for _, d := range tl.Days {
		if d.Count < threshold {
			underfed[d.Date] = true
		}
	}
	ctx.println(grid.Table(tl, underfed, ctx.Service.Calendar().SlotHour))
	return nil
}

type ExportCmd struct {
	Start string `help:"First day of the report (YYYY-MM-DD). Defaults to the week ending today."`
	Out   string `short:"o" help:"Output PDF path. Defaults to feedlog-week-<start>.pdf in the current directory." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	report, err := ctx.Service.Weekly(context.Background(), c.Start)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = fmt.Sprintf("%s-week-%s.pdf", constants.AppName, report.Days[0].Date)
	}
	err = export.Save(report, export.Options{
		Limit:       ctx.Service.Options().DailyLimit,
		GeneratedAt: ctx.Service.Calendar().Now(),
	}, out)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	ctx.printf("✓ Weekly report written to %s\n", filepath.Clean(out))
	return nil
}
