package journal

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/inkwell-journal/internal/repository"
)

// Errors returned by Service.  Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("an entry already exists for this day, update it instead")
	ErrNotFound     = errors.New("entry not found")
	ErrWrongSecret  = errors.New("wrong secret")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr translates a Store error into the service taxonomy.  Anything
// that is not a known repository sentinel is logged and wrapped as
// ErrStorage while keeping the cause reachable through errors.Is.
func (s *Service) storeErr(op string, ownerID uint64, err error) error {
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	s.log.Error("entry store failure",
		zap.String("op", op),
		zap.Uint64("owner_id", ownerID),
		zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
