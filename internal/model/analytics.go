package model

import "time"

// Count is one bucket of a frequency histogram (mood or tag).
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// MonthTotal is the total word count written in the month starting at Month.
type MonthTotal struct {
	Month time.Time `json:"month"`
	Words int       `json:"words"`
}

// StreakInfo is derived from the set of days that have an entry.
// MissedDates is ascending.
type StreakInfo struct {
	CurrentStreak int         `json:"current_streak"`
	LongestStreak int         `json:"longest_streak"`
	MissedDates   []time.Time `json:"missed_dates"`
}
