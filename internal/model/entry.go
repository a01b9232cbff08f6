package model

import "time"

// DayLayout is the wire format of an entry day (YYYY-MM-DD).
const DayLayout = "2006-01-02"

// LockedPlaceholder replaces the content of a locked entry on every read path.
const LockedPlaceholder = "[This entry is locked. Please unlock to view content.]"

// Entry mirrors a row of the `entries` table.  One entry exists per
// (OwnerID, Day).  SecondaryMoods and Tags are stored flattened as
// comma-separated text; the repository splits them back into slices.
type Entry struct {
	ID             uint64     // entries.id
	OwnerID        uint64     // entries.user_id
	Day            time.Time  // entries.day (midnight UTC)
	Title          string     // entries.title
	Content        string     // entries.content
	CreatedAt      time.Time  // entries.created_at
	UpdatedAt      *time.Time // entries.updated_at (null until first update)
	PrimaryMood    string     // entries.primary_mood
	SecondaryMoods []string   // entries.secondary_moods
	Tags           []string   // entries.tags
	Locked         bool       // entries.is_locked
	LockSecretHash string     // entries.lock_secret_hash (empty unless locked)
}

// Redacted returns a copy that is safe to hand out: the lock hash is always
// dropped and, when the entry is locked, the content is replaced by
// LockedPlaceholder.  The receiver is not modified.
func (e Entry) Redacted() Entry {
	out := e
	out.LockSecretHash = ""
	if e.Locked {
		out.Content = LockedPlaceholder
	}
	if e.SecondaryMoods != nil {
		out.SecondaryMoods = append([]string(nil), e.SecondaryMoods...)
	}
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// DayOf returns the calendar date of t, as seen in loc, normalized to
// midnight UTC.  A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a midnight UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}
