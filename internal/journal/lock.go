package journal

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/inkwell-journal/internal/model"
	"github.com/iliyamo/inkwell-journal/internal/utils"
)

// Lock gates the content of the owner's entry for day behind secret.
// Locking an already locked entry replaces the secret.  Stored content is
// left untouched.
func (s *Service) Lock(ctx context.Context, ownerID uint64, day time.Time, secret string) error {
	if err := checkOwner(ownerID); err != nil {
		return err
	}
	if secret == "" {
		return validationf("secret is required")
	}
	e, err := s.store.FindByDay(ctx, ownerID, model.DayOf(day, time.UTC))
	if err != nil {
		return s.storeErr("find_by_day", ownerID, err)
	}
	hash, err := utils.HashPassword(secret, s.secretCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return validationf("secret is too long")
		}
		return err
	}
	if err := s.store.SetLock(ctx, ownerID, e.ID, hash); err != nil {
		return s.storeErr("set_lock", ownerID, err)
	}
	s.emit(ctx, KindLocked, e)
	return nil
}

// Unlock verifies secret and clears the lock of the owner's entry for day,
// returning the entry with its content.  A wrong secret yields
// ErrWrongSecret and leaves the entry locked.  Unlocking an entry that is
// not locked succeeds without a change event.
func (s *Service) Unlock(ctx context.Context, ownerID uint64, day time.Time, secret string) (model.Entry, error) {
	if err := checkOwner(ownerID); err != nil {
		return model.Entry{}, err
	}
	e, err := s.store.FindByDay(ctx, ownerID, model.DayOf(day, time.UTC))
	if err != nil {
		return model.Entry{}, s.storeErr("find_by_day", ownerID, err)
	}
	if !e.Locked {
		return e.Redacted(), nil
	}
	if !utils.VerifyPassword(e.LockSecretHash, secret) {
		return model.Entry{}, ErrWrongSecret
	}
	if err := s.store.ClearLock(ctx, ownerID, e.ID); err != nil {
		return model.Entry{}, s.storeErr("clear_lock", ownerID, err)
	}
	e.Locked = false
	e.LockSecretHash = ""
	s.emit(ctx, KindUnlocked, e)
	return e.Redacted(), nil
}
