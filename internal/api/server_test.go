package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/feedlog/internal/calendar"
	"github.com/julianstephens/feedlog/internal/config"
	"github.com/julianstephens/feedlog/internal/feeding"
	"github.com/julianstephens/feedlog/internal/models"
	"github.com/julianstephens/feedlog/internal/storage/sqlite"
)

var testNow = time.Date(2025, 12, 13, 1, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "feedlog.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	cal := &calendar.Calendar{StartHour: 4, Location: time.UTC, Clock: calendar.FixedClock{T: testNow}}
	svc := feeding.NewService(store, cal, feeding.Options{})
	cfg := config.ServerConfig{
		Address:         "127.0.0.1:0",
		GracefulTimeout: time.Second,
		CORSOrigins:     []string{"http://localhost:3100"},
	}
	return NewServer(cfg, svc, store), store
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "API is running", body["message"])
	assert.Equal(t, "2025-12-13T01:00:00Z", body["timestamp"])
}

func TestAppendAndToday(t *testing.T) {
	srv, _ := setupTestServer(t)
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/feeding", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[models.AppendResult](t, rec)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 6, res.Limit)
	require.NotNil(t, res.Latest)
	assert.Equal(t, "2025-12-13 01:00:00", *res.Latest)
	assert.NotEmpty(t, res.ID)

	rec = doRequest(t, h, http.MethodGet, "/api/feeding/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, summary["count"])
	assert.Equal(t, "2025-12-13 01:00:00", summary["latest"])
	assert.EqualValues(t, 6, summary["limit"])
}

func TestTodayEmptyHasNullLatest(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"latest":null,"limit":6}`, rec.Body.String())
}

func TestWeekly(t *testing.T) {
	srv, store := setupTestServer(t)
	ctx := context.Background()
	for i, ts := range []time.Time{
		time.Date(2025, 12, 12, 5, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 13, 0, 30, 0, 0, time.UTC),
	} {
		f := models.Feeding{ID: string(rune('a' + i)), FeedingTime: ts, Amount: 10, CreatedAt: ts, UpdatedAt: ts}
		require.NoError(t, store.InsertFeeding(ctx, f))
	}

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[models.WeeklyReport](t, rec)
	require.Len(t, report.Days, 7)
	assert.Equal(t, "2025-12-12", report.Days[6].Date)
	assert.Equal(t, 2, report.Days[6].Count)
	assert.Equal(t, 0.29, report.Avg)
	assert.Len(t, report.UnderfedDays, 7)
	assert.Equal(t, "00:30", report.Days[6].Records[1].Time)
	assert.Equal(t, "2025-12-13 00:30:00", report.Days[6].Records[1].FullTime)

	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/weekly?start_date=2025-12-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report = decode[models.WeeklyReport](t, rec)
	assert.Equal(t, "2025-12-12", report.Days[0].Date)
	assert.Equal(t, 2, report.Days[0].Count)
}

func TestWeeklyInvalidStartDate(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/weekly?start_date=12-07-2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestWeeklyExport(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/weekly/export?start_date=2025-12-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "feedlog-week-2025-12-06.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestTimelineRoute(t *testing.T) {
	srv, store := setupTestServer(t)
	ts := time.Date(2025, 12, 13, 2, 15, 0, 0, time.UTC)
	require.NoError(t, store.InsertFeeding(context.Background(), models.Feeding{ID: "n", FeedingTime: ts, Amount: 10, CreatedAt: ts, UpdatedAt: ts}))

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/feeding/timeline?start_date=2025-12-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tl := decode[models.Timeline](t, rec)
	require.Len(t, tl.Days, 7)
	require.Len(t, tl.Days[0].Slots[26], 1)
	assert.Equal(t, "n", tl.Days[0].Slots[26][0].ID)
}

func TestEditAndDelete(t *testing.T) {
	srv, store := setupTestServer(t)
	h := srv.Handler()

	res := decode[models.AppendResult](t, doRequest(t, h, http.MethodPost, "/api/feeding", nil))

	rec := doRequest(t, h, http.MethodPut, "/api/feeding/"+res.ID, map[string]string{"new_feeding_time": "2025-12-10 08:00:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	edit := decode[models.EditResult](t, rec)
	assert.EqualValues(t, 1, edit.Updated)

	f, err := store.GetFeeding(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, f.FeedingTime.Equal(time.Date(2025, 12, 10, 8, 0, 0, 0, time.UTC)))

	rec = doRequest(t, h, http.MethodPut, "/api/feeding/"+res.ID, map[string]string{"new_feeding_time": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/feeding/"+res.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPut, "/api/feeding/missing", map[string]string{"new_feeding_time": "2025-12-10 08:00:00"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[models.EditResult](t, rec).Updated)

	rec = doRequest(t, h, http.MethodDelete, "/api/feeding/"+res.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.MessageResult](t, rec).Deleted)

	rec = doRequest(t, h, http.MethodDelete, "/api/feeding/"+res.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestResetToday(t *testing.T) {
	srv, _ := setupTestServer(t)
	h := srv.Handler()

	doRequest(t, h, http.MethodPost, "/api/feeding", nil)
	doRequest(t, h, http.MethodPost, "/api/feeding", nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := doRequest(t, h, method, "/api/feeding/reset-today", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "reset")
	}

	rec := doRequest(t, h, http.MethodGet, "/api/feeding/today", nil)
	assert.EqualValues(t, 0, decode[models.Summary](t, rec).Count)
}

func TestStoreUnavailable(t *testing.T) {
	srv, store := setupTestServer(t)
	require.NoError(t, store.Close())

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/feeding/today", nil)
	req.Header.Set("Origin", "http://localhost:3100")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3100", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoute(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStream(t *testing.T) {
	srv, _ := setupTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/feeding/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snapshot streamMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "snapshot", snapshot.Type)
	assert.Equal(t, 0, snapshot.Summary.Count)

	resp, err := http.Post(ts.URL+"/api/feeding", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	var update streamMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, string(feeding.EventAppended), update.Type)
	assert.Equal(t, 1, update.Summary.Count)
}

func TestStreamRejectsUnknownOrigin(t *testing.T) {
	srv, _ := setupTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/feeding/stream"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed([]string{"http://a"}, ""))
	assert.True(t, originAllowed([]string{"http://a"}, "http://a"))
	assert.False(t, originAllowed([]string{"http://a"}, "http://b"))
	assert.True(t, originAllowed([]string{"*"}, "http://b"))
	assert.Nil(t, corsMiddleware(nil))
}
