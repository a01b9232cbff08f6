package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/model"
)

// stubJournal records the last call and returns canned values.
type stubJournal struct {
	owner   uint64
	day     time.Time
	input   journal.EntryInput
	search  journal.SearchQuery
	from    time.Time
	to      time.Time
	months  int
	back    int
	secret  string
	entry   model.Entry
	entries []model.Entry
	created bool
	err     error
}

var _ Journal = (*stubJournal)(nil)

func (s *stubJournal) CreateOrUpdate(_ context.Context, owner uint64, day time.Time, in journal.EntryInput) (model.Entry, bool, error) {
	s.owner, s.day, s.input = owner, day, in
	return s.entry, s.created, s.err
}
func (s *stubJournal) GetByDay(_ context.Context, owner uint64, day time.Time) (model.Entry, error) {
	s.owner, s.day = owner, day
	return s.entry, s.err
}
func (s *stubJournal) GetByID(_ context.Context, owner, _ uint64) (model.Entry, error) {
	s.owner = owner
	return s.entry, s.err
}
func (s *stubJournal) List(_ context.Context, owner uint64) ([]model.Entry, error) {
	s.owner = owner
	return s.entries, s.err
}
func (s *stubJournal) ListRange(_ context.Context, owner uint64, from, to time.Time) ([]model.Entry, error) {
	s.owner, s.from, s.to = owner, from, to
	return s.entries, s.err
}
func (s *stubJournal) Search(_ context.Context, owner uint64, q journal.SearchQuery) (journal.SearchResult, error) {
	s.owner, s.search = owner, q
	return journal.SearchResult{Entries: s.entries, Total: int64(len(s.entries)), PageIndex: q.PageIndex, PageSize: 10}, s.err
}
func (s *stubJournal) Delete(_ context.Context, owner, _ uint64) error {
	s.owner = owner
	return s.err
}
func (s *stubJournal) DeleteByDay(_ context.Context, owner uint64, day time.Time) error {
	s.owner, s.day = owner, day
	return s.err
}
func (s *stubJournal) Lock(_ context.Context, owner uint64, day time.Time, secret string) error {
	s.owner, s.day, s.secret = owner, day, secret
	return s.err
}
func (s *stubJournal) Unlock(_ context.Context, owner uint64, day time.Time, secret string) (model.Entry, error) {
	s.owner, s.day, s.secret = owner, day, secret
	return s.entry, s.err
}
func (s *stubJournal) MoodFrequencies(_ context.Context, owner uint64) ([]model.Count, error) {
	s.owner = owner
	return []model.Count{{Value: "Happy", Count: 2}}, s.err
}
func (s *stubJournal) TagFrequencies(_ context.Context, owner uint64) ([]model.Count, error) {
	s.owner = owner
	return nil, s.err
}
func (s *stubJournal) WordCountTrends(_ context.Context, owner uint64, months int) ([]model.MonthTotal, error) {
	s.owner, s.months = owner, months
	return []model.MonthTotal{{Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Words: 120}}, s.err
}
func (s *stubJournal) StreakInfo(_ context.Context, owner uint64, back int) (model.StreakInfo, error) {
	s.owner, s.back = owner, back
	return model.StreakInfo{CurrentStreak: 2, LongestStreak: 4, MissedDates: []time.Time{time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}}, s.err
}

const testOwner = uint64(7)

// serve runs h against a request whose route params are names=values and
// which is authenticated as testOwner.
func serve(t *testing.T, h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(append(c.ParamNames(), params[i])...)
		c.SetParamValues(append(c.ParamValues(), params[i+1])...)
	}
	c.Set("user_id", testOwner)
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func sampleEntry() model.Entry {
	return model.Entry{
		ID:          3,
		OwnerID:     testOwner,
		Day:         time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Title:       "Friday",
		Content:     "long day",
		PrimaryMood: "Tired",
		Tags:        []string{"Work"},
		CreatedAt:   time.Date(2024, 1, 5, 21, 0, 0, 0, time.UTC),
	}
}

func TestPut_CreatedAndUpdated(t *testing.T) {
	j := &stubJournal{entry: sampleEntry(), created: true}
	h := NewEntryHandler(j)
	body := `{"title":"Friday","content":"long day","primary_mood":"Tired","secondary_moods":["Calm"],"tags":["Work"]}`

	rec := serve(t, h.Put, http.MethodPut, "/v1/entries/2024-01-05", body, "day", "2024-01-05")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testOwner, j.owner)
	assert.Equal(t, "2024-01-05", j.day.Format(model.DayLayout))
	assert.Equal(t, []string{"Calm"}, j.input.SecondaryMoods)

	got := decode(t, rec)
	assert.Equal(t, "2024-01-05", got["day"])
	assert.Equal(t, []any{}, got["secondary_moods"])
	assert.NotContains(t, got, "lock_secret_hash")

	j.created = false
	rec = serve(t, h.Put, http.MethodPut, "/v1/entries/2024-01-05", body, "day", "2024-01-05")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPut_BadDay(t *testing.T) {
	h := NewEntryHandler(&stubJournal{})
	rec := serve(t, h.Put, http.MethodPut, "/v1/entries/05-01-2024", `{}`, "day", "05-01-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: primary mood is required", journal.ErrValidation), http.StatusBadRequest},
		{journal.ErrUnauthorized, http.StatusUnauthorized},
		{journal.ErrNotFound, http.StatusNotFound},
		{journal.ErrConflict, http.StatusConflict},
		{journal.ErrWrongSecret, http.StatusForbidden},
		{fmt.Errorf("%w: upsert: %w", journal.ErrStorage, errors.New("deadlock")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewEntryHandler(&stubJournal{err: tt.err})
			rec := serve(t, h.GetByDay, http.MethodGet, "/v1/entries/2024-01-05", "", "day", "2024-01-05")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestConflictMessagePointsToUpdate(t *testing.T) {
	h := NewEntryHandler(&stubJournal{err: journal.ErrConflict})
	rec := serve(t, h.Put, http.MethodPut, "/", `{"primary_mood":"Happy"}`, "day", "2024-01-05")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "update it instead")
}

func TestGetByID_InvalidID(t *testing.T) {
	h := NewEntryHandler(&stubJournal{})
	rec := serve(t, h.GetByID, http.MethodGet, "/v1/entries/id/abc", "", "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletes(t *testing.T) {
	j := &stubJournal{}
	h := NewEntryHandler(j)
	rec := serve(t, h.DeleteByDay, http.MethodDelete, "/", "", "day", "2024-01-05")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(t, h.DeleteByID, http.MethodDelete, "/", "", "id", "3")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearch_ParsesQuery(t *testing.T) {
	j := &stubJournal{entries: []model.Entry{sampleEntry()}}
	h := NewEntryHandler(j)
	rec := serve(t, h.Search, http.MethodGet,
		"/v1/entries/search?q=day&from=2024-01-01&to=2024-02-01&mood=Tired&mood=Calm&tag=Work&page=2&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "day", j.search.Text)
	assert.Equal(t, []string{"Tired", "Calm"}, j.search.Moods)
	assert.Equal(t, []string{"Work"}, j.search.Tags)
	assert.Equal(t, 2, j.search.PageIndex)
	assert.Equal(t, 5, j.search.PageSize)
	require.NotNil(t, j.search.From)
	assert.Equal(t, "2024-01-01", j.search.From.Format(model.DayLayout))

	got := decode(t, rec)
	assert.EqualValues(t, 1, got["total"])
	assert.EqualValues(t, 2, got["page"])
	assert.Len(t, got["data"], 1)
}

func TestSearch_BadParams(t *testing.T) {
	h := NewEntryHandler(&stubJournal{})
	for _, q := range []string{"from=yesterday", "to=2024-13-01", "page=x", "page_size=1.5"} {
		rec := serve(t, h.Search, http.MethodGet, "/v1/entries/search?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestExport_DefaultsOpenBounds(t *testing.T) {
	j := &stubJournal{}
	h := NewEntryHandler(j)
	rec := serve(t, h.Export, http.MethodGet, "/v1/entries/export?from=2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", j.from.Format(model.DayLayout))
	assert.Equal(t, exportMax, j.to)
	assert.Equal(t, []any{}, decode(t, rec)["data"])
}

func TestLockAndUnlock(t *testing.T) {
	e := sampleEntry()
	j := &stubJournal{entry: e}
	h := NewEntryHandler(j)

	rec := serve(t, h.Lock, http.MethodPost, "/", `{"secret":"s3"}`, "day", "2024-01-05")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "s3", j.secret)

	rec = serve(t, h.Unlock, http.MethodPost, "/", `{"secret":"s3"}`, "day", "2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "long day", decode(t, rec)["content"])

	j.err = journal.ErrWrongSecret
	rec = serve(t, h.Unlock, http.MethodPost, "/", `{"secret":"nope"}`, "day", "2024-01-05")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnalytics(t *testing.T) {
	j := &stubJournal{}
	h := NewAnalyticsHandler(j, 12, 30)

	rec := serve(t, h.Moods, http.MethodGet, "/v1/analytics/moods", "")
	assert.JSONEq(t, `{"data":[{"value":"Happy","count":2}]}`, rec.Body.String())

	rec = serve(t, h.Tags, http.MethodGet, "/v1/analytics/tags", "")
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	rec = serve(t, h.WordCounts, http.MethodGet, "/v1/analytics/word-counts", "")
	assert.Equal(t, 12, j.months)
	assert.JSONEq(t, `{"months":12,"data":[{"month":"2024-01","words":120}]}`, rec.Body.String())

	rec = serve(t, h.Streak, http.MethodGet, "/v1/analytics/streak?lookback=7", "")
	assert.Equal(t, 7, j.back)
	assert.JSONEq(t, `{"current_streak":2,"longest_streak":4,"missed_dates":["2024-01-03"]}`, rec.Body.String())

	rec = serve(t, h.Streak, http.MethodGet, "/v1/analytics/streak?lookback=week", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVocabulary(t *testing.T) {
	rec := serve(t, Vocabulary, http.MethodGet, "/v1/vocabulary", "")
	got := decode(t, rec)
	assert.Len(t, got["moods"], 12)
	assert.Len(t, got["tags"], 12)
}

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	rec := serve(t, Health(nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := pingFunc(func(context.Context) error { return errors.New("gone") })
	rec = serve(t, Health(down), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
