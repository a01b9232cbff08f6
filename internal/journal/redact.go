package journal

import (
	"context"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
	"github.com/iliyamo/inkwell-journal/internal/repository"
)

// redactingReader wraps the read side of a Store.  Every entry it returns
// has passed through model.Entry.Redacted, so the service cannot hand out
// locked content or a lock hash from a read path.
type redactingReader struct {
	store Store
}

func (r redactingReader) FindByDay(ctx context.Context, ownerID uint64, day time.Time) (model.Entry, error) {
	e, err := r.store.FindByDay(ctx, ownerID, day)
	if err != nil {
		return model.Entry{}, err
	}
	return e.Redacted(), nil
}

func (r redactingReader) FindByID(ctx context.Context, ownerID, id uint64) (model.Entry, error) {
	e, err := r.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return model.Entry{}, err
	}
	return e.Redacted(), nil
}

func (r redactingReader) ListByOwner(ctx context.Context, ownerID uint64, newestFirst bool) ([]model.Entry, error) {
	out, err := r.store.ListByOwner(ctx, ownerID, newestFirst)
	return redactAll(out), err
}

func (r redactingReader) ListRange(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error) {
	out, err := r.store.ListRange(ctx, ownerID, from, to)
	return redactAll(out), err
}

func (r redactingReader) Search(ctx context.Context, q repository.EntrySearchQuery) ([]model.Entry, int64, error) {
	out, total, err := r.store.Search(ctx, q)
	return redactAll(out), total, err
}

func redactAll(entries []model.Entry) []model.Entry {
	if entries == nil {
		return nil
	}
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Redacted()
	}
	return out
}
