// Package feeding records feeding events and builds the today summary and
// the weekly report on top of the custom-day calendar.
package feeding

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/feedlog/internal/calendar"
	"github.com/julianstephens/feedlog/internal/constants"
	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/models"
	"github.com/julianstephens/feedlog/internal/storage"
)

// Options tune the service. Zero values fall back to the package defaults.
type Options struct {
	DefaultAmount     int
	DailyLimit        int
	UnderfedThreshold int
}

func (o Options) withDefaults() Options {
	if o.DefaultAmount <= 0 {
		o.DefaultAmount = constants.DefaultAmount
	}
	if o.DailyLimit <= 0 {
		o.DailyLimit = constants.DefaultDailyLimit
	}
	if o.UnderfedThreshold <= 0 {
		o.UnderfedThreshold = constants.UnderfedThreshold
	}
	return o
}

type Service struct {
	store storage.Provider
	cal   *calendar.Calendar
	opts  Options
	newID func() string

	mu        sync.RWMutex
	listeners []Listener
}

func NewService(store storage.Provider, cal *calendar.Calendar, opts Options) *Service {
	if cal == nil {
		cal = calendar.Default()
	}
	return &Service{
		store: store,
		cal:   cal,
		opts:  opts.withDefaults(),
		newID: uuid.NewString,
	}
}

// Calendar returns the calendar the service resolves days with.
func (s *Service) Calendar() *calendar.Calendar {
	return s.cal
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

// Append records a feeding at the current instant and returns the refreshed
// summary of the current custom day.
func (s *Service) Append(ctx context.Context) (models.AppendResult, error) {
	now := s.cal.Now()
	f := models.Feeding{
		ID:          s.newID(),
		FeedingTime: now,
		Amount:      s.opts.DefaultAmount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertFeeding(ctx, f); err != nil {
		return models.AppendResult{}, apperrors.Store("feeding.Append", err)
	}
	logger.Debug("Feeding recorded", "id", f.ID, "at", now.Format(constants.DateTimeFormat))
	s.emit(Event{Type: EventAppended, ID: f.ID, Affected: 1, At: now})

	summary, err := s.Today(ctx)
	if err != nil {
		return models.AppendResult{}, err
	}

	return models.AppendResult{
		Message: constants.MsgFeedingRecorded,
		ID:      f.ID,
		Count:   summary.Count,
		Latest:  summary.Latest,
		Limit:   summary.Limit,
	}, nil
}

// Today summarizes the current custom day.
//
// Only the lower bound of the window is applied: a feeding dated after the
// window end still counts towards today.
func (s *Service) Today(ctx context.Context) (models.Summary, error) {
	w := s.cal.Current()
	feedings, err := s.store.QueryRange(ctx, &w.Start, nil, models.Descending)
	if err != nil {
		return models.Summary{}, apperrors.Store("feeding.Today", err)
	}

	summary := models.Summary{Count: len(feedings), Limit: s.opts.DailyLimit}
	if len(feedings) > 0 {
		latest := s.formatFull(feedings[0].FeedingTime)
		summary.Latest = &latest
	}
	return summary, nil
}

// ResetToday deletes every feeding inside the current custom-day window.
func (s *Service) ResetToday(ctx context.Context) (models.MessageResult, error) {
	w := s.cal.Current()
	n, err := s.store.DeleteRange(ctx, &w.Start, &w.End)
	if err != nil {
		return models.MessageResult{}, apperrors.Store("feeding.ResetToday", err)
	}
	logger.Info("Reset today's feedings", "day", w.Key(), "deleted", n)
	s.emit(Event{Type: EventReset, Affected: n, At: s.cal.Now()})
	return models.MessageResult{Message: constants.MsgTodayReset, Deleted: n}, nil
}

// RangeStart resolves the first custom day of a weekly report. An empty
// startDate means the week ending with the current custom day.
func (s *Service) RangeStart(startDate string) (time.Time, error) {
	if strings.TrimSpace(startDate) == "" {
		return s.cal.AddDays(s.cal.Current().Start, -(constants.ReportDays - 1)), nil
	}
	return s.cal.DayStart(startDate)
}

// Weekly builds the dense seven-day report starting at startDate (or the
// default range when empty).
func (s *Service) Weekly(ctx context.Context, startDate string) (models.WeeklyReport, error) {
	rangeStart, err := s.RangeStart(startDate)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	rangeEnd := s.cal.AddDays(rangeStart, constants.ReportDays)

	days := make([]models.DayBucket, constants.ReportDays)
	index := make(map[string]int, constants.ReportDays)
	for i := range days {
		key := s.cal.DayKey(s.cal.AddDays(rangeStart, i))
		days[i] = models.DayBucket{Date: key, Records: []models.Record{}}
		index[key] = i
	}

	feedings, err := s.store.QueryRange(ctx, &rangeStart, &rangeEnd, models.Ascending)
	if err != nil {
		return models.WeeklyReport{}, apperrors.Store("feeding.Weekly", err)
	}

	for _, f := range feedings {
		i, ok := index[s.cal.DayKey(f.FeedingTime)]
		if !ok {
			continue
		}
		t := f.FeedingTime.In(s.cal.Location)
		days[i].Count++
		days[i].Records = append(days[i].Records, models.Record{
			ID:       f.ID,
			Time:     t.Format(constants.TimeFormat),
			FullTime: t.Format(constants.DateTimeFormat),
		})
	}

	report := models.WeeklyReport{Days: days, UnderfedDays: []string{}}
	for _, d := range days {
		if d.Count < s.opts.UnderfedThreshold {
			report.UnderfedDays = append(report.UnderfedDays, d.Date)
		}
	}
	report.Avg = roundTo(float64(report.Total())/float64(constants.ReportDays), 2)
	return report, nil
}

// Timeline regroups a weekly report by hour slot for the calendar grid.
func (s *Service) Timeline(ctx context.Context, startDate string) (models.Timeline, error) {
	report, err := s.Weekly(ctx, startDate)
	if err != nil {
		return models.Timeline{}, err
	}

	tl := models.Timeline{Slots: s.cal.Slots(), Days: make([]models.TimelineDay, len(report.Days))}
	for i, d := range report.Days {
		day := models.TimelineDay{Date: d.Date, Count: d.Count, Slots: map[int][]models.Record{}}
		for _, r := range d.Records {
			slot, err := s.cal.Slot(r.Time)
			if err != nil {
				return models.Timeline{}, err
			}
			day.Slots[slot] = append(day.Slots[slot], r)
		}
		tl.Days[i] = day
	}
	return tl, nil
}

// Edit moves a feeding to a new timestamp. An unknown id is not an error;
// the result reports zero updated rows.
func (s *Service) Edit(ctx context.Context, id, newTimestamp string) (models.EditResult, error) {
	if strings.TrimSpace(id) == "" {
		return models.EditResult{}, apperrors.Invalid("feeding.Edit", "missing feeding id")
	}
	ts, err := s.cal.ParseTimestamp(newTimestamp)
	if err != nil {
		return models.EditResult{}, err
	}

	now := s.cal.Now()
	n, err := s.store.UpdateFeedingTime(ctx, id, ts, now)
	if err != nil {
		return models.EditResult{}, apperrors.Store("feeding.Edit", err)
	}
	if n == 0 {
		logger.Warn("Edit matched no feeding", "id", id)
		return models.EditResult{Message: "No feeding matched " + id, Updated: 0}, nil
	}

	s.emit(Event{Type: EventEdited, ID: id, Affected: n, At: now})
	return models.EditResult{Message: constants.MsgFeedingUpdated, Updated: n}, nil
}

// Delete removes a feeding. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id string) (models.MessageResult, error) {
	if strings.TrimSpace(id) == "" {
		return models.MessageResult{}, apperrors.Invalid("feeding.Delete", "missing feeding id")
	}
	deleted, err := s.store.DeleteFeeding(ctx, id)
	if err != nil {
		return models.MessageResult{}, apperrors.Store("feeding.Delete", err)
	}
	if !deleted {
		return models.MessageResult{Message: constants.MsgFeedingDeleted}, nil
	}

	s.emit(Event{Type: EventDeleted, ID: id, Affected: 1, At: s.cal.Now()})
	return models.MessageResult{Message: constants.MsgFeedingDeleted, Deleted: 1}, nil
}

func (s *Service) formatFull(t time.Time) string {
	return t.In(s.cal.Location).Format(constants.DateTimeFormat)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
