package feeding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/julianstephens/feedlog/internal/errors"
	"github.com/julianstephens/feedlog/internal/models"
)

var errBroken = errors.New("database is locked")

// memStore is an in-memory storage.Provider for service tests.
type memStore struct {
	mu       sync.Mutex
	feedings map[string]models.Feeding
	fail     bool
}

func newMemStore() *memStore {
	return &memStore{feedings: map[string]models.Feeding{}}
}

func (m *memStore) Init() error                    { return nil }
func (m *memStore) Load() error                    { return nil }
func (m *memStore) Close() error                   { return nil }
func (m *memStore) Ping(ctx context.Context) error { return m.check() }
func (m *memStore) GetConfigPath() string          { return "memory" }

func (m *memStore) check() error {
	if m.fail {
		return errBroken
	}
	return nil
}

func (m *memStore) add(id string, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedings[id] = models.Feeding{ID: id, FeedingTime: ts, Amount: 10, CreatedAt: ts, UpdatedAt: ts}
}

func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && !t.Before(*end) {
		return false
	}
	return true
}

func (m *memStore) InsertFeeding(ctx context.Context, f models.Feeding) error {
	if err := m.check(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.feedings[f.ID]; ok {
		return fmt.Errorf("duplicate id %s", f.ID)
	}
	m.feedings[f.ID] = f
	return nil
}

func (m *memStore) GetFeeding(ctx context.Context, id string) (models.Feeding, error) {
	if err := m.check(); err != nil {
		return models.Feeding{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feedings[id]
	if !ok {
		return models.Feeding{}, apperrors.New("mem.GetFeeding", apperrors.ErrNotFound, nil)
	}
	return f, nil
}

func (m *memStore) QueryRange(ctx context.Context, start, end *time.Time, order models.SortOrder) ([]models.Feeding, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Feeding{}
	for _, f := range m.feedings {
		if inRange(f.FeedingTime, start, end) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == models.Descending {
			return out[i].FeedingTime.After(out[j].FeedingTime)
		}
		return out[i].FeedingTime.Before(out[j].FeedingTime)
	})
	return out, nil
}

func (m *memStore) DeleteFeeding(ctx context.Context, id string) (bool, error) {
	if err := m.check(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.feedings[id]
	delete(m.feedings, id)
	return ok, nil
}

func (m *memStore) DeleteRange(ctx context.Context, start, end *time.Time) (int64, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, f := range m.feedings {
		if inRange(f.FeedingTime, start, end) {
			delete(m.feedings, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateFeedingTime(ctx context.Context, id string, feedingTime, updatedAt time.Time) (int64, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feedings[id]
	if !ok {
		return 0, nil
	}
	f.FeedingTime = feedingTime
	f.UpdatedAt = updatedAt
	m.feedings[id] = f
	return 1, nil
}

func (m *memStore) AllFeedings(ctx context.Context) ([]models.Feeding, error) {
	return m.QueryRange(ctx, nil, nil, models.Ascending)
}
