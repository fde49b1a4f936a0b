package models

import "time"

// SortOrder controls the ordering of range queries by feeding time.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Feeding is a single recorded feeding event.
type Feeding struct {
	ID          string    `json:"id"`
	FeedingTime time.Time `json:"feeding_time"`
	Amount      int       `json:"amount"` // grams
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record is the per-event row of a daily bucket.
type Record struct {
	ID       string `json:"id"`
	Time     string `json:"time"`      // HH:MM
	FullTime string `json:"full_time"` // YYYY-MM-DD HH:MM:SS
}

// DayBucket aggregates the feedings of one custom day.
type DayBucket struct {
	Date    string   `json:"date"` // YYYY-MM-DD, the custom day's start date
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// WeeklyReport is a dense 7-day report starting at a custom-day boundary.
type WeeklyReport struct {
	Avg          float64     `json:"avg"`
	UnderfedDays []string    `json:"underfedDays"`
	Days         []DayBucket `json:"days"`
}

// Total sums the bucket counts.
func (r WeeklyReport) Total() int {
	total := 0
	for _, d := range r.Days {
		total += d.Count
	}
	return total
}

// IsUnderfed reports whether the given day key is listed as underfed.
func (r WeeklyReport) IsUnderfed(date string) bool {
	for _, d := range r.UnderfedDays {
		if d == date {
			return true
		}
	}
	return false
}

// Summary is the current custom day's feeding status.
type Summary struct {
	Count  int     `json:"count"`
	Latest *string `json:"latest"` // nil when nothing was recorded today
	Limit  int     `json:"limit"`
}

// AppendResult is returned after recording a feeding.
type AppendResult struct {
	Message string  `json:"message"`
	ID      string  `json:"id"`
	Count   int     `json:"count"`
	Latest  *string `json:"latest"`
	Limit   int     `json:"limit"`
}

// EditResult is returned after correcting a feeding time.
type EditResult struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

// MessageResult carries a plain status message.
type MessageResult struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted,omitempty"`
}

// TimelineDay groups a day's records by display slot.
type TimelineDay struct {
	Date  string           `json:"date"`
	Count int              `json:"count"`
	Slots map[int][]Record `json:"slots"`
}

// Timeline is a weekly report regrouped for the hour-slot grid.
type Timeline struct {
	Slots []int         `json:"slots"`
	Days  []TimelineDay `json:"days"`
}
