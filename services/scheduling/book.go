package scheduling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gobarber/database/repository"
	"gobarber/models"
)

// BookingInput is a raw booking request.
type BookingInput struct {
	ProviderID int64
	Date       string
}

// BookAppointment reserves the hour containing in.Date with the provider on
// behalf of actorID. The checks run in a fixed order and the first failure wins.
func (e *Engine) BookAppointment(ctx context.Context, actorID int64, in BookingInput) (*models.Appointment, error) {
	// Step 1: shape
	if in.ProviderID <= 0 {
		return nil, invalid(fmt.Errorf("provider_id must be a positive integer"))
	}
	requested, err := ParseDate(in.Date, e.location)
	if err != nil {
		return nil, invalid(err)
	}

	// Step 2: self-booking
	if in.ProviderID == actorID {
		return nil, ErrSelfBooking
	}

	// Step 3: provider must exist and carry the provider flag
	n, err := e.directory.CountProviders(ctx, in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("check provider %d: %w", in.ProviderID, err)
	}
	if n != 1 {
		return nil, ErrProviderNotFound
	}

	// Step 4: the slot is the start of the requested hour in the engine's zone,
	// whatever offset the caller sent
	slot := HourStart(requested.In(e.location)).UTC()
	if IsBefore(slot, e.clock.Now()) {
		return nil, ErrPastDate
	}

	// Step 5: one active appointment per provider slot
	taken, err := e.store.CountActiveAt(ctx, in.ProviderID, slot)
	if err != nil {
		return nil, fmt.Errorf("check slot availability: %w", err)
	}
	if taken > 0 {
		return nil, ErrSlotUnavailable
	}

	// Step 6: persist; the unique index settles races the count above missed
	appt := &models.Appointment{
		UserID:     actorID,
		ProviderID: in.ProviderID,
		Date:       slot,
	}
	if err := e.store.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	// Step 7: tell the provider
	e.notifyProvider(ctx, actorID, appt)

	e.logger.Info("Appointment booked",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("user_id", actorID),
		zap.Int64("provider_id", appt.ProviderID),
		zap.Time("date", appt.Date))
	return appt, nil
}

// notifyProvider records a NEW_SCHEDULE notification. The appointment is
// already committed, so failures here are logged only.
func (e *Engine) notifyProvider(ctx context.Context, actorID int64, appt *models.Appointment) {
	logger := e.logger.With(zap.Int64("appointment_id", appt.ID))

	actor, err := e.directory.FindByID(ctx, actorID)
	if err != nil {
		logger.Error("Failed to load requester for notification", zap.Error(err))
		return
	}
	if actor == nil {
		logger.Warn("Requester not found, skipping notification", zap.Int64("user_id", actorID))
		return
	}

	n := &models.Notification{
		Type:   models.NotificationTypeNewSchedule,
		Client: actor.Name,
		Date:   appt.Date,
		User:   appt.ProviderID,
	}
	if err := e.notifications.Insert(ctx, n); err != nil {
		logger.Error("Failed to store provider notification", zap.Error(err))
	}
}
