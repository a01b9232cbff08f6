package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/model"
)

// AnalyticsHandler serves the /v1/analytics routes.  Defaults apply when
// the months or lookback query parameter is absent.
type AnalyticsHandler struct {
	J               Journal
	DefaultMonths   int
	DefaultLookback int
}

func NewAnalyticsHandler(j Journal, months, lookback int) *AnalyticsHandler {
	return &AnalyticsHandler{J: j, DefaultMonths: months, DefaultLookback: lookback}
}

type monthResp struct {
	Month string `json:"month"`
	Words int    `json:"words"`
}

type streakResp struct {
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	MissedDates   []string `json:"missed_dates"`
}

func (h *AnalyticsHandler) Moods(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	counts, err := h.J.MoodFrequencies(ctx, ownerOf(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": nonNilCounts(counts)})
}

func (h *AnalyticsHandler) Tags(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	counts, err := h.J.TagFrequencies(ctx, ownerOf(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": nonNilCounts(counts)})
}

func (h *AnalyticsHandler) WordCounts(c echo.Context) error {
	months, err := optionalInt(c, "months", h.DefaultMonths)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "months must be an integer"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	totals, err := h.J.WordCountTrends(ctx, ownerOf(c), months)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]monthResp, 0, len(totals))
	for _, t := range totals {
		out = append(out, monthResp{Month: t.Month.Format("2006-01"), Words: t.Words})
	}
	return c.JSON(http.StatusOK, echo.Map{"months": months, "data": out})
}

func (h *AnalyticsHandler) Streak(c echo.Context) error {
	lookback, err := optionalInt(c, "lookback", h.DefaultLookback)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lookback must be an integer"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	info, err := h.J.StreakInfo(ctx, ownerOf(c), lookback)
	if err != nil {
		return writeErr(c, err)
	}
	resp := streakResp{
		CurrentStreak: info.CurrentStreak,
		LongestStreak: info.LongestStreak,
		MissedDates:   make([]string, 0, len(info.MissedDates)),
	}
	for _, d := range info.MissedDates {
		resp.MissedDates = append(resp.MissedDates, d.Format(model.DayLayout))
	}
	return c.JSON(http.StatusOK, resp)
}

// Vocabulary lists the mood and tag suggestions offered to clients.
func Vocabulary(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"moods": journal.AvailableMoods(),
		"tags":  journal.SuggestedTags(),
	})
}

func nonNilCounts(cs []model.Count) []model.Count {
	if cs == nil {
		return []model.Count{}
	}
	return cs
}
