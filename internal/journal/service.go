// Package journal is the entry-management core: it validates and stores
// one entry per owner and day, searches entries, derives analytics, gates
// entry content behind a lock secret and announces every change.
//
// Every operation takes the owner id supplied by the authentication layer;
// a zero owner is refused with ErrUnauthorized.
package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/inkwell-journal/internal/model"
	"github.com/iliyamo/inkwell-journal/internal/repository"
)

// Service orchestrates entry lifecycle, search, locking and analytics on
// top of a Store.  It is safe for concurrent use.
type Service struct {
	store      Store
	reads      redactingReader
	events     *Broadcaster
	log        *zap.Logger
	now        func() time.Time
	loc        *time.Location
	secretCost int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the zone in which "today" is decided.  Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSecretCost sets the bcrypt cost used to hash lock secrets.
func WithSecretCost(cost int) Option { return func(s *Service) { s.secretCost = cost } }

// NewService builds a Service.  A nil events broadcaster gets a private one.
func NewService(store Store, events *Broadcaster, opts ...Option) *Service {
	s := &Service{
		store:      store,
		reads:      redactingReader{store: store},
		events:     events,
		log:        zap.NewNop(),
		now:        time.Now,
		loc:        time.UTC,
		secretCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	if s.events == nil {
		s.events = NewBroadcaster(s.log)
	}
	return s
}

// Events exposes the change broadcaster for listener registration.
func (s *Service) Events() *Broadcaster { return s.events }

// Subscribe registers a change listener; see Broadcaster.Subscribe.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) { return s.events.Subscribe(fn) }

// Today returns the current calendar day in the service location.
func (s *Service) Today() time.Time { return model.DayOf(s.now(), s.loc) }

// stamp is the current instant at the precision of DATETIME(6).
func (s *Service) stamp() time.Time { return s.now().UTC().Truncate(time.Microsecond) }

func (s *Service) emit(ctx context.Context, kind ChangeKind, e model.Entry) {
	s.events.Publish(ctx, EntryChanged{
		EventID: uuid.New(),
		Kind:    kind,
		OwnerID: e.OwnerID,
		EntryID: e.ID,
		Day:     e.Day,
		At:      s.stamp(),
	})
}

func checkOwner(ownerID uint64) error {
	if ownerID == 0 {
		return ErrUnauthorized
	}
	return nil
}

// CreateOrUpdate saves the owner's entry for day.  The first save creates
// the entry; later saves update it in place and set UpdatedAt.  created
// reports which happened.  Concurrent first saves for the same day yield
// one winner and ErrConflict for the rest.
func (s *Service) CreateOrUpdate(ctx context.Context, ownerID uint64, day time.Time, in EntryInput) (e model.Entry, created bool, err error) {
	if err := checkOwner(ownerID); err != nil {
		return model.Entry{}, false, err
	}
	n, err := normalizeInput(in)
	if err != nil {
		return model.Entry{}, false, err
	}
	day = model.DayOf(day, time.UTC)

	cur, err := s.store.FindByDay(ctx, ownerID, day)
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		e = model.Entry{OwnerID: ownerID, Day: day, CreatedAt: s.stamp()}
		created = true
	case err != nil:
		return model.Entry{}, false, s.storeErr("find_by_day", ownerID, err)
	default:
		e = cur
		t := s.stamp()
		e.UpdatedAt = &t
	}
	e.Title = n.title
	e.Content = n.content
	e.PrimaryMood = n.primary
	e.SecondaryMoods = n.secondary
	e.Tags = n.tags

	if err := s.store.Upsert(ctx, &e); err != nil {
		return model.Entry{}, false, s.storeErr("upsert", ownerID, err)
	}
	kind := KindUpdated
	if created {
		kind = KindCreated
	}
	s.emit(ctx, kind, e)
	return e.Redacted(), created, nil
}

// GetByDay returns the owner's entry for day, redacted when locked.
func (s *Service) GetByDay(ctx context.Context, ownerID uint64, day time.Time) (model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return model.Entry{}, err
	}
	e, err := s.reads.FindByDay(ctx, ownerID, model.DayOf(day, time.UTC))
	if err != nil {
		return model.Entry{}, s.storeErr("find_by_day", ownerID, err)
	}
	return e, nil
}

// GetByID returns the owner's entry with the given id, redacted when locked.
// Entries of other owners are reported as ErrNotFound.
func (s *Service) GetByID(ctx context.Context, ownerID, id uint64) (model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return model.Entry{}, err
	}
	e, err := s.reads.FindByID(ctx, ownerID, id)
	if err != nil {
		return model.Entry{}, s.storeErr("find_by_id", ownerID, err)
	}
	return e, nil
}

// List returns all of the owner's entries, newest day first.
func (s *Service) List(ctx context.Context, ownerID uint64) ([]model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	out, err := s.reads.ListByOwner(ctx, ownerID, true)
	if err != nil {
		return nil, s.storeErr("list", ownerID, err)
	}
	return out, nil
}

// ListRange returns the owner's entries with from <= day < to in
// ascending day order.  It feeds document export.
func (s *Service) ListRange(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return nil, err
	}
	from, to = model.DayOf(from, time.UTC), model.DayOf(to, time.UTC)
	if to.Before(from) {
		return nil, validationf("range end %s is before start %s", to.Format(model.DayLayout), from.Format(model.DayLayout))
	}
	out, err := s.reads.ListRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, s.storeErr("list_range", ownerID, err)
	}
	return out, nil
}

// SearchQuery filters an owner's entries.  Zero values disable a filter.
// From is inclusive, To exclusive.  Moods and Tags use any-of matching.
type SearchQuery struct {
	Text      string
	From      *time.Time
	To        *time.Time
	Moods     []string
	Tags      []string
	PageIndex int
	PageSize  int
}

// SearchResult is one page of matches and the total match count.
type SearchResult struct {
	Entries   []model.Entry
	Total     int64
	PageIndex int
	PageSize  int
}

// Search runs q for the owner.  A negative PageIndex is treated as 0 and a
// non-positive PageSize as the default of 10.  PageIndex is capped so the
// row offset always fits in an int.
func (s *Service) Search(ctx context.Context, ownerID uint64, q SearchQuery) (SearchResult, error) {
	if err := checkOwner(ownerID); err != nil {
		return SearchResult{}, err
	}
	if q.PageIndex < 0 {
		q.PageIndex = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.PageIndex > maxPageIndex {
		q.PageIndex = maxPageIndex
	}
	res := SearchResult{Entries: []model.Entry{}, PageIndex: q.PageIndex, PageSize: q.PageSize}

	moods, noMood := cleanFilter(q.Moods)
	tags, noTag := cleanFilter(q.Tags)
	if noMood || noTag {
		return res, nil
	}

	rq := repository.EntrySearchQuery{
		OwnerID:  ownerID,
		Text:     strings.TrimSpace(q.Text),
		Moods:    moods,
		Tags:     tags,
		Page:     q.PageIndex,
		PageSize: q.PageSize,
	}
	if q.From != nil {
		f := model.DayOf(*q.From, time.UTC)
		rq.From = &f
	}
	if q.To != nil {
		t := model.DayOf(*q.To, time.UTC)
		rq.To = &t
	}

	entries, total, err := s.reads.Search(ctx, rq)
	if err != nil {
		return SearchResult{}, s.storeErr("search", ownerID, err)
	}
	if entries != nil {
		res.Entries = entries
	}
	res.Total = total
	return res, nil
}

// Delete removes the owner's entry by id.  Deleting a missing entry is a
// no-op and emits nothing.
func (s *Service) Delete(ctx context.Context, ownerID, id uint64) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	e, err := s.store.FindByID(ctx, ownerID, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return s.storeErr("find_by_id", ownerID, err)
	}
	removed, err := s.store.Delete(ctx, ownerID, id)
	if err != nil {
		return s.storeErr("delete", ownerID, err)
	}
	if removed {
		s.emit(ctx, KindDeleted, e)
	}
	return nil
}

// DeleteByDay removes the owner's entry for day with the same no-op
// semantics as Delete.
func (s *Service) DeleteByDay(ctx context.Context, ownerID uint64, day time.Time) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	day = model.DayOf(day, time.UTC)
	e, err := s.store.FindByDay(ctx, ownerID, day)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return s.storeErr("find_by_day", ownerID, err)
	}
	removed, err := s.store.DeleteByDay(ctx, ownerID, day)
	if err != nil {
		return s.storeErr("delete_by_day", ownerID, err)
	}
	if removed {
		s.emit(ctx, KindDeleted, e)
	}
	return nil
}
