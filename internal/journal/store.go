package journal

import (
	"context"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
	"github.com/iliyamo/inkwell-journal/internal/repository"
)

// Store is the durable entry storage the service runs against.
// *repository.EntryRepo implements it.
//
// Implementations report a missing entry with repository.ErrEntryNotFound
// and a second entry for the same (owner, day) with repository.ErrConflict.
// The uniqueness check must be atomic in the backend.  Delete and
// DeleteByDay report whether a row was removed and never fail on absence.
type Store interface {
	FindByDay(ctx context.Context, ownerID uint64, day time.Time) (model.Entry, error)
	FindByID(ctx context.Context, ownerID, id uint64) (model.Entry, error)
	ListByOwner(ctx context.Context, ownerID uint64, newestFirst bool) ([]model.Entry, error)
	ListRange(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error)
	ListDays(ctx context.Context, ownerID uint64) ([]time.Time, error)
	Search(ctx context.Context, q repository.EntrySearchQuery) ([]model.Entry, int64, error)
	Upsert(ctx context.Context, e *model.Entry) error
	Delete(ctx context.Context, ownerID, id uint64) (bool, error)
	DeleteByDay(ctx context.Context, ownerID uint64, day time.Time) (bool, error)
	SetLock(ctx context.Context, ownerID, id uint64, secretHash string) error
	ClearLock(ctx context.Context, ownerID, id uint64) error
}

var _ Store = (*repository.EntryRepo)(nil)
