package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inkwell-journal/internal/model"
)

func newEntryRepoWithMock(t *testing.T) (*EntryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEntryRepo(db), mock
}

var entryCols = []string{"id", "user_id", "day", "title", "content", "primary_mood",
	"secondary_moods", "tags", "is_locked", "lock_secret_hash", "created_at", "updated_at"}

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFindByDay_Found(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	created := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	rows := sqlmock.NewRows(entryCols).
		AddRow(int64(3), int64(1), day("2024-01-05"), "t", "body", "Happy", "Calm,Tired", "Work", false, nil, created, updated)
	mock.ExpectQuery(`(?s)^SELECT .+ FROM entries WHERE user_id = \? AND day = \?$`).
		WithArgs(uint64(1), "2024-01-05").
		WillReturnRows(rows)

	e, err := repo.FindByDay(context.Background(), 1, day("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), e.ID)
	assert.Equal(t, []string{"Calm", "Tired"}, e.SecondaryMoods)
	assert.Equal(t, []string{"Work"}, e.Tags)
	assert.Empty(t, e.LockSecretHash)
	require.NotNil(t, e.UpdatedAt)
	assert.True(t, updated.Equal(*e.UpdatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByDay_NotFound(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectQuery(`FROM entries WHERE user_id = \? AND day = \?`).
		WithArgs(uint64(1), "2024-01-05").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByDay(context.Background(), 1, day("2024-01-05"))
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestFindByID_ScopedToOwner(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectQuery(`FROM entries WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(9), uint64(2)).
		WillReturnRows(sqlmock.NewRows(entryCols))

	_, err := repo.FindByID(context.Background(), 2, 9)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_Order(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE user_id = \? ORDER BY day DESC`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow(int64(2), int64(1), day("2024-01-02"), "", "", "Sad", "", "", true, "h", now, nil).
			AddRow(int64(1), int64(1), day("2024-01-01"), "", "", "Happy", "", "", false, nil, now, nil))

	out, err := repo.ListByOwner(context.Background(), 1, true)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[0].ID)
	assert.True(t, out[0].Locked)
	assert.Equal(t, "h", out[0].LockSecretHash)
	assert.Nil(t, out[0].Tags)
	assert.Nil(t, out[1].UpdatedAt)
}

func TestListRange_HalfOpenAscending(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectQuery(`(?s)WHERE user_id = \? AND day >= \? AND day < \?\s+ORDER BY day ASC`).
		WithArgs(uint64(1), "2024-01-01", "2024-02-01").
		WillReturnRows(sqlmock.NewRows(entryCols))

	out, err := repo.ListRange(context.Background(), 1, day("2024-01-01"), day("2024-02-01"))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDays(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectQuery(`SELECT DISTINCT day FROM entries WHERE user_id = \?`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"day"}).
			AddRow(day("2024-01-01")).
			AddRow(day("2024-01-03")))

	days, err := repo.ListDays(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day("2024-01-01"), day("2024-01-03")}, days)
}

func TestUpsert_InsertSetsID(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	created := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^INSERT INTO entries`).
		WithArgs(uint64(1), "2024-01-05", "title", "body", "Happy", "Calm", "Work,Family", created).
		WillReturnResult(sqlmock.NewResult(42, 1))

	e := &model.Entry{OwnerID: 1, Day: day("2024-01-05"), Title: "title", Content: "body",
		PrimaryMood: "Happy", SecondaryMoods: []string{"Calm"}, Tags: []string{"Work", "Family"}, CreatedAt: created}
	require.NoError(t, repo.Upsert(context.Background(), e))
	assert.Equal(t, uint64(42), e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DuplicateDayIsConflict(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectExec(`INSERT INTO entries`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2024-01-05' for key 'uq_entries_user_day'"})

	e := &model.Entry{OwnerID: 1, Day: day("2024-01-05"), PrimaryMood: "Happy"}
	err := repo.Upsert(context.Background(), e)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, e.ID)
}

func TestUpsert_UpdateInPlace(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	upd := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)^UPDATE entries\s+SET title = \?, content = \?, primary_mood = \?, secondary_moods = \?, tags = \?, updated_at = \?\s+WHERE id = \? AND user_id = \?`).
		WithArgs("t2", "b2", "Sad", "", "", upd, uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := &model.Entry{ID: 7, OwnerID: 1, Title: "t2", Content: "b2", PrimaryMood: "Sad", UpdatedAt: &upd}
	require.NoError(t, repo.Upsert(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_UpdateMissingRow(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectExec(`UPDATE entries`).WillReturnResult(sqlmock.NewResult(0, 0))

	upd := time.Now().UTC()
	err := repo.Upsert(context.Background(), &model.Entry{ID: 7, OwnerID: 1, PrimaryMood: "Sad", UpdatedAt: &upd})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDelete_MissingIsNoop(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM entries WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteByDay(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectExec(`DELETE FROM entries WHERE user_id = \? AND day = \?`).
		WithArgs(uint64(1), "2024-01-05").
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.DeleteByDay(context.Background(), 1, day("2024-01-05"))
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestSetLockAndClearLock(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	mock.ExpectExec(`UPDATE entries SET is_locked = 1, lock_secret_hash = \? WHERE id = \? AND user_id = \?`).
		WithArgs("hash", uint64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE entries SET is_locked = 0, lock_secret_hash = NULL WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetLock(context.Background(), 1, 3, "hash"))
	assert.ErrorIs(t, repo.ClearLock(context.Background(), 1, 3), ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecErrorsPropagate(t *testing.T) {
	repo, mock := newEntryRepoWithMock(t)
	boom := errors.New("db down")
	mock.ExpectExec(`DELETE FROM entries`).WillReturnError(boom)

	_, err := repo.DeleteByDay(context.Background(), 1, day("2024-01-05"))
	assert.ErrorIs(t, err, boom)
}
