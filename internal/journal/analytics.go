package journal

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
)

// farFuture bounds open-ended range scans.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// MoodFrequencies counts the owner's primary moods plus every populated
// secondary mood slot, most frequent first.
func (s *Service) MoodFrequencies(ctx context.Context, ownerID uint64) ([]model.Count, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, s.storeErr("list", ownerID, err)
	}
	return MoodFrequencies(entries), nil
}

// TagFrequencies counts tag occurrences across the owner's entries, most
// frequent first.
func (s *Service) TagFrequencies(ctx context.Context, ownerID uint64) ([]model.Count, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, s.storeErr("list", ownerID, err)
	}
	return TagFrequencies(entries), nil
}

// WordCountTrends totals words per calendar month for entries dated no
// earlier than monthsBack months before today.
func (s *Service) WordCountTrends(ctx context.Context, ownerID uint64, monthsBack int) ([]model.MonthTotal, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	if monthsBack < 0 {
		return nil, validationf("months must not be negative")
	}
	from := MonthsBefore(s.Today(), monthsBack)
	entries, err := s.store.ListRange(ctx, ownerID, from, farFuture)
	if err != nil {
		return nil, s.storeErr("list_range", ownerID, err)
	}
	return WordCountTrends(entries, from), nil
}

// MonthsBefore steps day back n calendar months, clamping the day of month
// to the length of the target month (May 31 minus one month is April 30).
func MonthsBefore(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	target := m - time.Month(n)
	last := time.Date(y, target+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return time.Date(y, target, min(d, last), 0, 0, 0, 0, time.UTC)
}

// StreakInfo computes the owner's writing streaks and the days missed in
// the last lookbackDays days, today included.
func (s *Service) StreakInfo(ctx context.Context, ownerID uint64, lookbackDays int) (model.StreakInfo, error) {
	if err := checkOwner(ownerID); err != nil {
		return model.StreakInfo{}, err
	}
	if lookbackDays < 0 || lookbackDays > maxLookbackDays {
		return model.StreakInfo{}, validationf("lookback must be between 0 and %d days", maxLookbackDays)
	}
	days, err := s.store.ListDays(ctx, ownerID)
	if err != nil {
		return model.StreakInfo{}, s.storeErr("list_days", ownerID, err)
	}
	return ComputeStreak(days, s.Today(), lookbackDays), nil
}

// counter groups values case-insensitively, keeping the first spelling seen.
type counter struct {
	index map[string]int
	out   []model.Count
}

func newCounter() *counter { return &counter{index: map[string]int{}} }

func (c *counter) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	key := strings.ToLower(v)
	if i, ok := c.index[key]; ok {
		c.out[i].Count++
		return
	}
	c.index[key] = len(c.out)
	c.out = append(c.out, model.Count{Value: v, Count: 1})
}

// sorted orders by count descending, ties alphabetically.
func (c *counter) sorted() []model.Count {
	out := c.out
	if out == nil {
		out = []model.Count{}
	}
	slices.SortStableFunc(out, func(a, b model.Count) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return cmp.Compare(strings.ToLower(a.Value), strings.ToLower(b.Value))
	})
	return out
}

// MoodFrequencies is the pure computation behind Service.MoodFrequencies.
func MoodFrequencies(entries []model.Entry) []model.Count {
	c := newCounter()
	for _, e := range entries {
		c.add(e.PrimaryMood)
		for _, m := range e.SecondaryMoods {
			c.add(m)
		}
	}
	return c.sorted()
}

// TagFrequencies is the pure computation behind Service.TagFrequencies.
func TagFrequencies(entries []model.Entry) []model.Count {
	c := newCounter()
	for _, e := range entries {
		for _, t := range e.Tags {
			c.add(t)
		}
	}
	return c.sorted()
}

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int { return len(strings.Fields(text)) }

// WordCountTrends groups entries with day >= from by first-of-month and
// sums their word counts.  Months are ascending; months without entries
// are omitted.
func WordCountTrends(entries []model.Entry, from time.Time) []model.MonthTotal {
	from = model.DayOf(from, time.UTC)
	totals := map[time.Time]int{}
	for _, e := range entries {
		d := model.DayOf(e.Day, time.UTC)
		if d.Before(from) {
			continue
		}
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] += CountWords(e.Content)
	}
	out := make([]model.MonthTotal, 0, len(totals))
	for m, w := range totals {
		out = append(out, model.MonthTotal{Month: m, Words: w})
	}
	slices.SortFunc(out, func(a, b model.MonthTotal) int { return a.Month.Compare(b.Month) })
	return out
}

// ComputeStreak derives StreakInfo from the days that have an entry.
//
// The current streak counts back from today and is 0 when today has no
// entry.  The longest streak is the longest run of consecutive days.
// Missed dates cover the lookbackDays days ending today, ascending.
func ComputeStreak(days []time.Time, today time.Time, lookbackDays int) model.StreakInfo {
	today = model.DayOf(today, time.UTC)
	set := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		set[model.DayOf(d, time.UTC)] = struct{}{}
	}
	has := func(d time.Time) bool {
		_, ok := set[d]
		return ok
	}

	info := model.StreakInfo{MissedDates: []time.Time{}}

	for d := today; has(d); d = d.AddDate(0, 0, -1) {
		info.CurrentStreak++
	}

	for d := range set {
		if has(d.AddDate(0, 0, -1)) {
			continue
		}
		run := 0
		for x := d; has(x); x = x.AddDate(0, 0, 1) {
			run++
		}
		info.LongestStreak = max(info.LongestStreak, run)
	}

	if lookbackDays > 0 {
		for d := today.AddDate(0, 0, -(lookbackDays - 1)); !d.After(today); d = d.AddDate(0, 0, 1) {
			if !has(d) {
				info.MissedDates = append(info.MissedDates, d)
			}
		}
	}
	return info
}
