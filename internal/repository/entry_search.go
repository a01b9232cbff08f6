package repository

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
)

// EntrySearchQuery defines filters & pagination for searching an owner's
// entries.  Empty filters are ignored.  Page is zero based.
type EntrySearchQuery struct {
	OwnerID  uint64
	Text     string
	From     *time.Time // inclusive
	To       *time.Time // exclusive
	Moods    []string
	Tags     []string
	Page     int
	PageSize int
}

// likeEscaper escapes LIKE wildcards with MySQL's default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// memberPattern builds a LIKE pattern matching value as a whole element of a
// flattened list.  The stored column is padded with separators on both
// sides so "sad" never matches inside "sadness".
func memberPattern(value string) string {
	return "%" + listSep + likeEscaper.Replace(strings.ToLower(value)) + listSep + "%"
}

const paddedSecondary = "CONCAT('" + listSep + "', LOWER(secondary_moods), '" + listSep + "')"
const paddedTags = "CONCAT('" + listSep + "', LOWER(tags), '" + listSep + "')"

// Search returns one page of the owner's entries matching every active
// filter together with the total number of matches.  Moods match the
// primary mood or any secondary mood; tags match any of the given tags.
// Results are ordered newest first by creation time.  Free text matches the
// title of any entry but the content of unlocked entries only.
func (r *EntryRepo) Search(ctx context.Context, q EntrySearchQuery) ([]model.Entry, int64, error) {
	where := []string{"user_id = ?"}
	args := []any{q.OwnerID}

	if q.Text != "" {
		// Locked content is never matched; only its title is searchable.
		where = append(where, "(LOWER(title) LIKE ? OR (is_locked = 0 AND LOWER(content) LIKE ?))")
		p := "%" + likeEscaper.Replace(strings.ToLower(q.Text)) + "%"
		args = append(args, p, p)
	}
	if q.From != nil {
		where = append(where, "day >= ?")
		args = append(args, dayArg(*q.From))
	}
	if q.To != nil {
		where = append(where, "day < ?")
		args = append(args, dayArg(*q.To))
	}
	if len(q.Moods) > 0 {
		marks := make([]string, len(q.Moods))
		ors := make([]string, 0, len(q.Moods)+1)
		var likeArgs []any
		for i, m := range q.Moods {
			marks[i] = "?"
			args = append(args, strings.ToLower(m))
			likeArgs = append(likeArgs, memberPattern(m))
		}
		ors = append(ors, "LOWER(primary_mood) IN ("+strings.Join(marks, ", ")+")")
		for range q.Moods {
			ors = append(ors, paddedSecondary+" LIKE ?")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
		args = append(args, likeArgs...)
	}
	if len(q.Tags) > 0 {
		ors := make([]string, 0, len(q.Tags))
		for _, t := range q.Tags {
			ors = append(ors, paddedTags+" LIKE ?")
			args = append(args, memberPattern(t))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := "SELECT COUNT(*) FROM entries WHERE " + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.PageSize <= 0 || q.Page > math.MaxInt/q.PageSize {
		return []model.Entry{}, total, nil
	}
	limit := q.PageSize
	offset := q.Page * q.PageSize

	dataSQL := "SELECT " + entryColumns + `
		FROM entries
		WHERE ` + cond + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	out, err := r.queryEntries(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
