// Package repository contains data access logic separated from HTTP handlers.
// This file defines the entry repository: point lookups, owner listings,
// range scans and the single-row upsert used by the journal service.
// Uniqueness of (user_id, day) is enforced by the UNIQUE KEY on the table,
// never by a read-then-write check here.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
)

const entryColumns = `id, user_id, day, title, content, primary_mood, secondary_moods, tags,
	is_locked, lock_secret_hash, created_at, updated_at`

// listSep separates values of the flattened secondary_moods and tags columns.
const listSep = ","

// EntryRepo encapsulates all queries related to journal entries.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo constructs an EntryRepo with the provided DB handle.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (model.Entry, error) {
	var (
		e         model.Entry
		secondary string
		tags      string
		hash      sql.NullString
		updated   sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &e.Day, &e.Title, &e.Content, &e.PrimaryMood,
		&secondary, &tags, &e.Locked, &hash, &e.CreatedAt, &updated); err != nil {
		return model.Entry{}, err
	}
	e.Day = model.DayOf(e.Day, time.UTC)
	e.SecondaryMoods = splitList(secondary)
	e.Tags = splitList(tags)
	if hash.Valid {
		e.LockSecretHash = hash.String
	}
	if updated.Valid {
		t := updated.Time
		e.UpdatedAt = &t
	}
	return e, nil
}

func (r *EntryRepo) queryEntries(ctx context.Context, q string, args ...any) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByDay returns the owner's entry for day or ErrEntryNotFound.
func (r *EntryRepo) FindByDay(ctx context.Context, ownerID uint64, day time.Time) (model.Entry, error) {
	q := "SELECT " + entryColumns + " FROM entries WHERE user_id = ? AND day = ?"
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, ownerID, dayArg(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, ErrEntryNotFound
		}
		return model.Entry{}, err
	}
	return e, nil
}

// FindByID fetches an entry by id but only if it belongs to ownerID.
// Entries of other owners are reported as ErrEntryNotFound.
func (r *EntryRepo) FindByID(ctx context.Context, ownerID, id uint64) (model.Entry, error) {
	q := "SELECT " + entryColumns + " FROM entries WHERE id = ? AND user_id = ?"
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, ErrEntryNotFound
		}
		return model.Entry{}, err
	}
	return e, nil
}

// ListByOwner returns every entry of the owner ordered by day.
func (r *EntryRepo) ListByOwner(ctx context.Context, ownerID uint64, newestFirst bool) ([]model.Entry, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	q := "SELECT " + entryColumns + " FROM entries WHERE user_id = ? ORDER BY day " + order
	return r.queryEntries(ctx, q, ownerID)
}

// ListRange returns the owner's entries with from <= day < to, ascending by day.
func (r *EntryRepo) ListRange(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error) {
	q := "SELECT " + entryColumns + ` FROM entries
		WHERE user_id = ? AND day >= ? AND day < ?
		ORDER BY day ASC`
	return r.queryEntries(ctx, q, ownerID, dayArg(from), dayArg(to))
}

// ListDays returns the distinct days the owner has an entry for, ascending.
func (r *EntryRepo) ListDays(ctx context.Context, ownerID uint64) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT day FROM entries WHERE user_id = ? ORDER BY day ASC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, model.DayOf(d, time.UTC))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts e when e.ID is zero and updates it in place otherwise.
// On insert e.ID is populated.  A duplicate (user_id, day) yields
// ErrConflict; an update of a missing row yields ErrEntryNotFound.
// The day of an existing row is never changed.
func (r *EntryRepo) Upsert(ctx context.Context, e *model.Entry) error {
	if e.ID == 0 {
		const qInsert = `INSERT INTO entries
			(user_id, day, title, content, primary_mood, secondary_moods, tags, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := r.db.ExecContext(ctx, qInsert,
			e.OwnerID, dayArg(e.Day), e.Title, e.Content, e.PrimaryMood,
			joinList(e.SecondaryMoods), joinList(e.Tags), e.CreatedAt)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		e.ID = uint64(id)
		return nil
	}

	const qUpdate = `UPDATE entries
		SET title = ?, content = ?, primary_mood = ?, secondary_moods = ?, tags = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, qUpdate,
		e.Title, e.Content, e.PrimaryMood, joinList(e.SecondaryMoods), joinList(e.Tags),
		e.UpdatedAt, e.ID, e.OwnerID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return expectOneRow(res)
}

// Delete removes the owner's entry by id.  It reports whether a row was
// removed; a missing entry is not an error.
func (r *EntryRepo) Delete(ctx context.Context, ownerID, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByDay removes the owner's entry for day, reporting whether a row was removed.
func (r *EntryRepo) DeleteByDay(ctx context.Context, ownerID uint64, day time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE user_id = ? AND day = ?", ownerID, dayArg(day))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetLock marks the entry locked with the given secret hash.
func (r *EntryRepo) SetLock(ctx context.Context, ownerID, id uint64, secretHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE entries SET is_locked = 1, lock_secret_hash = ? WHERE id = ? AND user_id = ?",
		secretHash, id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ClearLock unlocks the entry and drops its secret hash.
func (r *EntryRepo) ClearLock(ctx context.Context, ownerID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE entries SET is_locked = 0, lock_secret_hash = NULL WHERE id = ? AND user_id = ?",
		id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// expectOneRow relies on clientFoundRows=true in the DSN so that an UPDATE
// which matches a row but changes nothing still reports it.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func dayArg(day time.Time) string { return day.Format(model.DayLayout) }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}

func joinList(vals []string) string { return strings.Join(vals, listSep) }
