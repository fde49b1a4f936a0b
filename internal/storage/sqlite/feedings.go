package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/models"
)

// timeLayout stores instants as fixed-width UTC text so that string
// comparison in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", value, err)
	}
	return t, nil
}

// rangeClause builds the WHERE fragment for a half-open [start, end) range.
func rangeClause(start, end *time.Time) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if start != nil {
		conds = append(conds, "feeding_time >= ?")
		args = append(args, formatTime(*start))
	}
	if end != nil {
		conds = append(conds, "feeding_time < ?")
		args = append(args, formatTime(*end))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) InsertFeeding(ctx context.Context, f models.Feeding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedings (id, feeding_time, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, formatTime(f.FeedingTime), f.Amount, formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	return err
}

func (s *Store) GetFeeding(ctx context.Context, id string) (models.Feeding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, feeding_time, amount, created_at, updated_at
		FROM feedings WHERE id = ?`, id)

	f, err := scanFeeding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Feeding{}, apperrors.New("sqlite.GetFeeding", apperrors.ErrNotFound, fmt.Errorf("feeding %s", id))
		}
		return models.Feeding{}, err
	}
	return f, nil
}

func (s *Store) QueryRange(ctx context.Context, start, end *time.Time, order models.SortOrder) ([]models.Feeding, error) {
	where, args := rangeClause(start, end)
	direction := "ASC"
	if order == models.Descending {
		direction = "DESC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, feeding_time, amount, created_at, updated_at
		FROM feedings`+where+`
		ORDER BY feeding_time `+direction+`, created_at `+direction, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedings(rows)
}

func (s *Store) DeleteFeeding(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM feedings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteRange(ctx context.Context, start, end *time.Time) (int64, error) {
	where, args := rangeClause(start, end)
	res, err := s.db.ExecContext(ctx, "DELETE FROM feedings"+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateFeedingTime(ctx context.Context, id string, feedingTime, updatedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE feedings SET feeding_time = ?, updated_at = ? WHERE id = ?",
		formatTime(feedingTime), formatTime(updatedAt), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) AllFeedings(ctx context.Context) ([]models.Feeding, error) {
	return s.QueryRange(ctx, nil, nil, models.Ascending)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFeeding(row scanner) (models.Feeding, error) {
	var f models.Feeding
	var feedingTime, createdAt, updatedAt string
	if err := row.Scan(&f.ID, &feedingTime, &f.Amount, &createdAt, &updatedAt); err != nil {
		return models.Feeding{}, err
	}

	var err error
	if f.FeedingTime, err = parseTime(feedingTime); err != nil {
		return models.Feeding{}, err
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Feeding{}, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Feeding{}, err
	}
	return f, nil
}

func scanFeedings(rows *sql.Rows) ([]models.Feeding, error) {
	feedings := []models.Feeding{}
	for rows.Next() {
		f, err := scanFeeding(rows)
		if err != nil {
			return nil, err
		}
		feedings = append(feedings, f)
	}
	return feedings, rows.Err()
}
