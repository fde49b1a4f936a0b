package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/models"
)

// rangeClause builds the WHERE fragment for a half-open [start, end) range,
// numbering placeholders from next.
func rangeClause(start, end *time.Time, next int) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if start != nil {
		conds = append(conds, "feeding_time >= $"+strconv.Itoa(next))
		args = append(args, *start)
		next++
	}
	if end != nil {
		conds = append(conds, "feeding_time < $"+strconv.Itoa(next))
		args = append(args, *end)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) InsertFeeding(ctx context.Context, f models.Feeding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedings (id, feeding_time, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.FeedingTime, f.Amount, f.CreatedAt, f.UpdatedAt)
	return err
}

func (s *Store) GetFeeding(ctx context.Context, id string) (models.Feeding, error) {
	var f models.Feeding
	err := s.db.QueryRowContext(ctx, `
		SELECT id, feeding_time, amount, created_at, updated_at
		FROM feedings WHERE id = $1`, id).
		Scan(&f.ID, &f.FeedingTime, &f.Amount, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Feeding{}, apperrors.New("postgres.GetFeeding", apperrors.ErrNotFound, fmt.Errorf("feeding %s", id))
		}
		return models.Feeding{}, err
	}
	return f, nil
}

func (s *Store) QueryRange(ctx context.Context, start, end *time.Time, order models.SortOrder) ([]models.Feeding, error) {
	where, args := rangeClause(start, end, 1)
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

	feedings := []models.Feeding{}
	for rows.Next() {
		var f models.Feeding
		if err := rows.Scan(&f.ID, &f.FeedingTime, &f.Amount, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		feedings = append(feedings, f)
	}
	return feedings, rows.Err()
}

func (s *Store) DeleteFeeding(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM feedings WHERE id = $1", id)
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
	where, args := rangeClause(start, end, 1)
	res, err := s.db.ExecContext(ctx, "DELETE FROM feedings"+where, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateFeedingTime(ctx context.Context, id string, feedingTime, updatedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE feedings SET feeding_time = $1, updated_at = $2 WHERE id = $3",
		feedingTime, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) AllFeedings(ctx context.Context) ([]models.Feeding, error) {
	return s.QueryRange(ctx, nil, nil, models.Ascending)
}
