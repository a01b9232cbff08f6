package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/middleware"
	"github.com/iliyamo/inkwell-journal/internal/model"
)

// Journal is the part of *journal.Service the HTTP layer calls.
type Journal interface {
	CreateOrUpdate(ctx context.Context, ownerID uint64, day time.Time, in journal.EntryInput) (model.Entry, bool, error)
	GetByDay(ctx context.Context, ownerID uint64, day time.Time) (model.Entry, error)
	GetByID(ctx context.Context, ownerID, id uint64) (model.Entry, error)
	List(ctx context.Context, ownerID uint64) ([]model.Entry, error)
	ListRange(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error)
	Search(ctx context.Context, ownerID uint64, q journal.SearchQuery) (journal.SearchResult, error)
	Delete(ctx context.Context, ownerID, id uint64) error
	DeleteByDay(ctx context.Context, ownerID uint64, day time.Time) error
	Lock(ctx context.Context, ownerID uint64, day time.Time, secret string) error
	Unlock(ctx context.Context, ownerID uint64, day time.Time, secret string) (model.Entry, error)
	MoodFrequencies(ctx context.Context, ownerID uint64) ([]model.Count, error)
	TagFrequencies(ctx context.Context, ownerID uint64) ([]model.Count, error)
	WordCountTrends(ctx context.Context, ownerID uint64, monthsBack int) ([]model.MonthTotal, error)
	StreakInfo(ctx context.Context, ownerID uint64, lookbackDays int) (model.StreakInfo, error)
}

var _ Journal = (*journal.Service)(nil)

// Open-ended export bounds.
var (
	exportMin = time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	exportMax = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// EntryHandler serves the /v1/entries routes.
type EntryHandler struct {
	J Journal
}

func NewEntryHandler(j Journal) *EntryHandler {
	if j == nil {
		panic("nil journal passed to NewEntryHandler")
	}
	return &EntryHandler{J: j}
}

// ----- DTOs -----

type entryReq struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	PrimaryMood    string   `json:"primary_mood"`
	SecondaryMoods []string `json:"secondary_moods"`
	Tags           []string `json:"tags"`
}

type secretReq struct {
	Secret string `json:"secret"`
}

type entryResp struct {
	ID             uint64     `json:"id"`
	Day            string     `json:"day"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	PrimaryMood    string     `json:"primary_mood"`
	SecondaryMoods []string   `json:"secondary_moods"`
	Tags           []string   `json:"tags"`
	Locked         bool       `json:"locked"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toEntryResp(e model.Entry) entryResp {
	r := entryResp{
		ID:             e.ID,
		Day:            e.Day.Format(model.DayLayout),
		Title:          e.Title,
		Content:        e.Content,
		PrimaryMood:    e.PrimaryMood,
		SecondaryMoods: e.SecondaryMoods,
		Tags:           e.Tags,
		Locked:         e.Locked,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if r.SecondaryMoods == nil {
		r.SecondaryMoods = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

func toEntryResps(es []model.Entry) []entryResp {
	out := make([]entryResp, 0, len(es))
	for _, e := range es {
		out = append(out, toEntryResp(e))
	}
	return out
}

// ownerOf returns 0 for anonymous requests; the service rejects owner 0
// with ErrUnauthorized.
func ownerOf(c echo.Context) uint64 {
	id, _ := middleware.UserID(c)
	return id
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

func dayParam(c echo.Context) (time.Time, bool) {
	d, err := model.ParseDay(c.Param("day"))
	return d, err == nil
}

func badDay(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "day must be YYYY-MM-DD"})
}

// Put creates the entry for :day or updates the existing one.
func (h *EntryHandler) Put(c echo.Context) error {
	day, ok := dayParam(c)
	if !ok {
		return badDay(c)
	}
	var req entryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	e, created, err := h.J.CreateOrUpdate(ctx, ownerOf(c), day, journal.EntryInput{
		Title:          req.Title,
		Content:        req.Content,
		PrimaryMood:    req.PrimaryMood,
		SecondaryMoods: req.SecondaryMoods,
		Tags:           req.Tags,
	})
	if err != nil {
		return writeErr(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, toEntryResp(e))
}

func (h *EntryHandler) GetByDay(c echo.Context) error {
	day, ok := dayParam(c)
	if !ok {
		return badDay(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	e, err := h.J.GetByDay(ctx, ownerOf(c), day)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toEntryResp(e))
}

func (h *EntryHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	e, err := h.J.GetByID(ctx, ownerOf(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toEntryResp(e))
}

// List returns every entry of the owner, newest day first.
func (h *EntryHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	es, err := h.J.List(ctx, ownerOf(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toEntryResps(es)})
}

func (h *EntryHandler) DeleteByDay(c echo.Context) error {
	day, ok := dayParam(c)
	if !ok {
		return badDay(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.J.DeleteByDay(ctx, ownerOf(c), day); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EntryHandler) DeleteByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.J.Delete(ctx, ownerOf(c), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// optionalDay parses an optional YYYY-MM-DD query parameter.
func optionalDay(c echo.Context, name string) (*time.Time, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseDay(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalInt(c echo.Context, name string, def int) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// Search supports q, from, to, repeated mood and tag, page (0-based) and
// page_size.
func (h *EntryHandler) Search(c echo.Context) error {
	from, err := optionalDay(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := optionalDay(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	page, err := optionalInt(c, "page", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be an integer"})
	}
	size, err := optionalInt(c, "page_size", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page_size must be an integer"})
	}
	qs := c.QueryParams()

	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.J.Search(ctx, ownerOf(c), journal.SearchQuery{
		Text:      c.QueryParam("q"),
		From:      from,
		To:        to,
		Moods:     qs["mood"],
		Tags:      qs["tag"],
		PageIndex: page,
		PageSize:  size,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      toEntryResps(res.Entries),
		"total":     res.Total,
		"page":      res.PageIndex,
		"page_size": res.PageSize,
	})
}

// Export lists from <= day < to in ascending day order.  Either bound may
// be omitted.
func (h *EntryHandler) Export(c echo.Context) error {
	from, err := optionalDay(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := optionalDay(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}
	lo, hi := exportMin, exportMax
	if from != nil {
		lo = *from
	}
	if to != nil {
		hi = *to
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	es, err := h.J.ListRange(ctx, ownerOf(c), lo, hi)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from": lo.Format(model.DayLayout),
		"to":   hi.Format(model.DayLayout),
		"data": toEntryResps(es),
	})
}

func (h *EntryHandler) Lock(c echo.Context) error {
	day, ok := dayParam(c)
	if !ok {
		return badDay(c)
	}
	var req secretReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.J.Lock(ctx, ownerOf(c), day, req.Secret); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unlock clears the lock and returns the entry with its real content.
func (h *EntryHandler) Unlock(c echo.Context) error {
	day, ok := dayParam(c)
	if !ok {
		return badDay(c)
	}
	var req secretReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	e, err := h.J.Unlock(ctx, ownerOf(c), day, req.Secret)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toEntryResp(e))
}
