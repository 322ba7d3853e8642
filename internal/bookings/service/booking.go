package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "villacal/internal/bookings/errors"
	"villacal/internal/bookings/notify"
	"villacal/internal/bookings/repository"
	"villacal/internal/bookings/validator"
	"villacal/pkg/config"
	apperrors "villacal/pkg/errors"
	"villacal/pkg/model"
)

// BookingService owns every write to the calendar. Each operation
// re-reads store state for its overlap decision; nothing is cached across
// requests, so a stale no-conflict answer cannot leak into a later write.
type BookingService interface {
	Create(ctx context.Context, input *model.BookingInput, createdByID string) (*model.Booking, error)
	Update(ctx context.Context, id string, input *model.BookingInput) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Booking, error)
	ListPublic(ctx context.Context) ([]model.PublicBooking, error)
	Subscribe(l notify.Listener)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	notifier  *notify.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	bookingValidator *validator.BookingValidator,
	notifier *notify.Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: bookingValidator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, input *model.BookingInput, createdByID string) (*model.Booking, error) {
	booking, err := s.validator.ValidateCreate(input, s.now())
	if err != nil {
		s.cfg.Log.Warn("Booking creation rejected", "error", err)
		return nil, err
	}
	booking.CreatedByID = createdByID

	lockID, err := s.acquireSlotLock(ctx, booking.Start, booking.End)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.findConflict(txCtx, booking.Start, booking.End, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"start", booking.Start,
		"end", booking.End,
		"created_by", createdByID,
	)
	s.notifier.Publish(ctx, notify.OpCreated, booking)
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, id string, input *model.BookingInput) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, id)
	}

	merged, timesChanged, err := s.validator.ValidateUpdate(existing, input, s.now())
	if err != nil {
		s.cfg.Log.Warn("Booking update rejected", "id", id, "error", err)
		return nil, err
	}

	// Title/notes-only edits need no overlap scan and no lock.
	if !timesChanged {
		if err := s.persistUpdate(ctx, id, merged); err != nil {
			return nil, err
		}
		s.cfg.Log.Info("Booking updated", "id", id, "times_changed", false)
		s.notifier.Publish(ctx, notify.OpUpdated, merged)
		return merged, nil
	}

	lockID, err := s.acquireSlotLock(ctx, merged.Start, merged.End)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.findConflict(txCtx, merged.Start, merged.End, id); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, id, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return bookingserrors.NotFound(id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking updated", "id", id, "times_changed", true)
	s.notifier.Publish(ctx, notify.OpUpdated, merged)
	return merged, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	// Loaded first so the notification can carry the removed record.
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateLookupError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return bookingserrors.NotFound(id)
		}
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted", "id", id)
	s.notifier.Publish(ctx, notify.OpDeleted, existing)
	return nil
}

func (s *bookingService) List(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListPublic(ctx context.Context) ([]model.PublicBooking, error) {
	bookings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]model.PublicBooking, 0, len(bookings))
	for _, b := range bookings {
		sanitized = append(sanitized, b.Public())
	}
	return sanitized, nil
}

func (s *bookingService) Subscribe(l notify.Listener) {
	s.notifier.Subscribe(l)
}

// --- Helpers ---

// findConflict scans current store state for a booking intersecting the
// proposed half-open interval, excluding the booking being edited.
func (s *bookingService) findConflict(ctx context.Context, start, end time.Time, excludeID string) error {
	conflicting, err := s.repo.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if conflicting != nil {
		return bookingserrors.ConflictWith(conflicting)
	}
	return nil
}

func (s *bookingService) persistUpdate(ctx context.Context, id string, merged *model.Booking) error {
	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return bookingserrors.NotFound(id)
		}
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return apperrors.Internal("Failed to update booking", err)
	}
	return nil
}

// acquireSlotLock takes the advisory lock for the proposed interval.
// A duplicate key means another request is writing the same slot.
func (s *bookingService) acquireSlotLock(ctx context.Context, start, end time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_%d_%d", start.Unix(), end.Unix())

	lock := &repository.SlotLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(10 * time.Second),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func translateLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return bookingserrors.NotFound(id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}
