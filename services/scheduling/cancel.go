package scheduling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gobarber/database/repository"
	"gobarber/models"
	"gobarber/services/queue"
)

// CancelAppointment cancels one of the actor's own appointments, provided the
// slot is still at least two hours away, and enqueues the cancellation mail.
func (e *Engine) CancelAppointment(ctx context.Context, actorID, appointmentID int64) (*models.Appointment, error) {
	if appointmentID <= 0 {
		return nil, invalid(fmt.Errorf("appointment id must be a positive integer"))
	}

	// Step 1: load with contacts for the mail payload
	appt, err := e.store.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment %d: %w", appointmentID, err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}

	// Step 2: only the requester may cancel
	if appt.UserID != actorID {
		return nil, ErrUnauthorized
	}

	// Step 3: canceling is one-way
	if appt.Canceled() {
		return nil, ErrAlreadyCanceled
	}

	// Step 4: cutoff is two hours before the slot, inclusive
	now := e.clock.Now()
	cutoff := SubtractHours(appt.Date, int(models.CancellationWindow.Hours()))
	if IsBefore(cutoff, now) {
		return nil, ErrCancellationWindow
	}

	// Step 5: conditional write, only one concurrent cancel succeeds
	canceledAt := now.UTC()
	appt.CanceledAt = &canceledAt
	if err := e.store.MarkCanceled(ctx, appt); err != nil {
		appt.CanceledAt = nil
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrAlreadyCanceled
		}
		return nil, fmt.Errorf("cancel appointment %d: %w", appt.ID, err)
	}

	// Step 6: mail goes out asynchronously
	e.jobs.Add(ctx, models.JobCancellationMail, models.NewCancellationMailPayload(appt),
		queue.WithUniqueID(fmt.Sprintf("cancellation:%d", appt.ID)))

	e.logger.Info("Appointment canceled",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("user_id", actorID),
		zap.Time("date", appt.Date))
	return appt, nil
}
