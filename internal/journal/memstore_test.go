package journal

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/inkwell-journal/internal/model"
	"github.com/iliyamo/inkwell-journal/internal/repository"
)

// memStore is an in-memory Store.  Like the MySQL table it enforces one
// row per (owner, day) atomically inside Upsert.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Entry
	fail   error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{rows: map[uint64]model.Entry{}} }

func clone(e model.Entry) model.Entry {
	e.SecondaryMoods = slices.Clone(e.SecondaryMoods)
	e.Tags = slices.Clone(e.Tags)
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		e.UpdatedAt = &t
	}
	return e
}

func (m *memStore) raw(id uint64) model.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.rows[id])
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memStore) put(e model.Entry) model.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.rows[e.ID] = clone(e)
	return e
}

func (m *memStore) sorted(keep func(model.Entry) bool, less func(a, b model.Entry) int) []model.Entry {
	out := []model.Entry{}
	for _, e := range m.rows {
		if keep(e) {
			out = append(out, clone(e))
		}
	}
	slices.SortFunc(out, less)
	return out
}

func byDayAsc(a, b model.Entry) int { return a.Day.Compare(b.Day) }

func (m *memStore) FindByDay(_ context.Context, ownerID uint64, day time.Time) (model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.Entry{}, m.fail
	}
	for _, e := range m.rows {
		if e.OwnerID == ownerID && e.Day.Equal(day) {
			return clone(e), nil
		}
	}
	return model.Entry{}, repository.ErrEntryNotFound
}

func (m *memStore) FindByID(_ context.Context, ownerID, id uint64) (model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.Entry{}, m.fail
	}
	e, ok := m.rows[id]
	if !ok || e.OwnerID != ownerID {
		return model.Entry{}, repository.ErrEntryNotFound
	}
	return clone(e), nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID uint64, newestFirst bool) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := m.sorted(func(e model.Entry) bool { return e.OwnerID == ownerID }, byDayAsc)
	if newestFirst {
		slices.Reverse(out)
	}
	return out, nil
}

func (m *memStore) ListRange(_ context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return m.sorted(func(e model.Entry) bool {
		return e.OwnerID == ownerID && !e.Day.Before(from) && e.Day.Before(to)
	}, byDayAsc), nil
}

func (m *memStore) ListDays(_ context.Context, ownerID uint64) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []time.Time
	for _, e := range m.sorted(func(e model.Entry) bool { return e.OwnerID == ownerID }, byDayAsc) {
		out = append(out, e.Day)
	}
	return out, nil
}

func containsFold(vals []string, v string) bool {
	return slices.ContainsFunc(vals, func(x string) bool { return strings.EqualFold(x, v) })
}

func (m *memStore) Search(_ context.Context, q repository.EntrySearchQuery) ([]model.Entry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, 0, m.fail
	}
	text := strings.ToLower(q.Text)
	all := m.sorted(func(e model.Entry) bool {
		if e.OwnerID != q.OwnerID {
			return false
		}
		if text != "" && !strings.Contains(strings.ToLower(e.Title), text) &&
			(e.Locked || !strings.Contains(strings.ToLower(e.Content), text)) {
			return false
		}
		if q.From != nil && e.Day.Before(*q.From) {
			return false
		}
		if q.To != nil && !e.Day.Before(*q.To) {
			return false
		}
		if len(q.Moods) > 0 && !slices.ContainsFunc(q.Moods, func(mood string) bool {
			return strings.EqualFold(e.PrimaryMood, mood) || containsFold(e.SecondaryMoods, mood)
		}) {
			return false
		}
		if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, func(tag string) bool { return containsFold(e.Tags, tag) }) {
			return false
		}
		return true
	}, func(a, b model.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	start := min(q.Page*q.PageSize, len(all))
	end := min(start+q.PageSize, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memStore) Upsert(_ context.Context, e *model.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if e.ID == 0 {
		for _, r := range m.rows {
			if r.OwnerID == e.OwnerID && r.Day.Equal(e.Day) {
				return repository.ErrConflict
			}
		}
		m.nextID++
		e.ID = m.nextID
		m.rows[e.ID] = clone(*e)
		return nil
	}
	r, ok := m.rows[e.ID]
	if !ok || r.OwnerID != e.OwnerID {
		return repository.ErrEntryNotFound
	}
	r.Title, r.Content, r.PrimaryMood = e.Title, e.Content, e.PrimaryMood
	r.SecondaryMoods, r.Tags, r.UpdatedAt = e.SecondaryMoods, e.Tags, e.UpdatedAt
	m.rows[e.ID] = clone(r)
	return nil
}

func (m *memStore) Delete(_ context.Context, ownerID, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	e, ok := m.rows[id]
	if !ok || e.OwnerID != ownerID {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memStore) DeleteByDay(_ context.Context, ownerID uint64, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	for id, e := range m.rows {
		if e.OwnerID == ownerID && e.Day.Equal(day) {
			delete(m.rows, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) setLock(ownerID, id uint64, locked bool, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	e, ok := m.rows[id]
	if !ok || e.OwnerID != ownerID {
		return repository.ErrEntryNotFound
	}
	e.Locked, e.LockSecretHash = locked, hash
	m.rows[id] = e
	return nil
}

func (m *memStore) SetLock(_ context.Context, ownerID, id uint64, secretHash string) error {
	return m.setLock(ownerID, id, true, secretHash)
}

func (m *memStore) ClearLock(_ context.Context, ownerID, id uint64) error {
	return m.setLock(ownerID, id, false, "")
}
