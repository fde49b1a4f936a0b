// Package export renders weekly feeding reports as PDF documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/julianstephens/feedlog/internal/constants"
	"github.com/julianstephens/feedlog/internal/models"
)

var (
	pdfHeaderColor   = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor    = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor     = props.Color{Red: 200, Green: 200, Blue: 200}
	pdfUnderfedColor = props.Color{Red: 190, Green: 40, Blue: 40}
)

// Options label the document.
type Options struct {
	Title       string
	Limit       int
	GeneratedAt time.Time
}

func (o Options) title() string {
	if o.Title == "" {
		return "Weekly feeding report"
	}
	return o.Title
}

func build(report models.WeeklyReport, opts Options) (core.Document, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, opts.title(), props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
	)
	if len(report.Days) > 0 {
		first, last := report.Days[0].Date, report.Days[len(report.Days)-1].Date
		m.AddRow(8,
			text.NewCol(12, fmt.Sprintf("%s to %s", first, last), props.Text{
				Size:  11,
				Color: &pdfMutedColor,
			}),
		)
	}
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(4)

	for _, day := range report.Days {
		label := day.Date
		if d, err := time.Parse(constants.DateFormat, day.Date); err == nil {
			label = fmt.Sprintf("%s, %s", d.Weekday(), day.Date)
		}

		color := &pdfHeaderColor
		countLabel := fmt.Sprintf("%d", day.Count)
		if opts.Limit > 0 {
			countLabel = fmt.Sprintf("%d / %d", day.Count, opts.Limit)
		}
		if report.IsUnderfed(day.Date) {
			color = &pdfUnderfedColor
			countLabel += "  underfed"
		}

		m.AddRow(8,
			text.NewCol(8, label, props.Text{
				Style: fontstyle.Bold,
				Size:  10,
				Color: color,
			}),
			text.NewCol(4, countLabel, props.Text{
				Style: fontstyle.Bold,
				Size:  10,
				Align: align.Right,
				Color: color,
			}),
		)

		if len(day.Records) > 0 {
			times := make([]string, len(day.Records))
			for i, r := range day.Records {
				times[i] = r.Time
			}
			m.AddRow(5,
				text.NewCol(12, "  "+strings.Join(times, "  "), props.Text{
					Size:  8,
					Color: &pdfMutedColor,
				}),
			)
		}
		m.AddRow(3)
	}

	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(8,
		text.NewCol(8, "Total", props.Text{Style: fontstyle.Bold, Size: 11, Color: &pdfHeaderColor}),
		text.NewCol(4, fmt.Sprintf("%d", report.Total()), props.Text{
			Style: fontstyle.Bold,
			Size:  11,
			Align: align.Right,
			Color: &pdfHeaderColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(8, "Daily average", props.Text{Style: fontstyle.Bold, Size: 11, Color: &pdfHeaderColor}),
		text.NewCol(4, fmt.Sprintf("%.2f", report.Avg), props.Text{
			Style: fontstyle.Bold,
			Size:  11,
			Align: align.Right,
			Color: &pdfHeaderColor,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("Underfed days: %d", len(report.UnderfedDays)), props.Text{
			Size:  10,
			Color: &pdfMutedColor,
		}),
	)
	if !opts.GeneratedAt.IsZero() {
		m.AddRow(6,
			text.NewCol(12, "Generated "+opts.GeneratedAt.Format(constants.DateTimeFormat), props.Text{
				Size:  8,
				Color: &pdfMutedColor,
			}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return doc, nil
}

// Render returns the PDF bytes for a weekly report.
func Render(report models.WeeklyReport, opts Options) ([]byte, error) {
	doc, err := build(report, opts)
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// Save renders a weekly report and writes it to outputPath.
func Save(report models.WeeklyReport, opts Options, outputPath string) error {
	doc, err := build(report, opts)
	if err != nil {
		return err
	}
	return doc.Save(outputPath)
}
