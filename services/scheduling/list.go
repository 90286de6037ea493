package scheduling

import (
	"context"
	"fmt"

	"gobarber/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination selects a window of the actor's appointments. A zero Limit means DefaultPageSize.
type Pagination struct {
	Limit  int
	Offset int
}

// ListAppointments returns the actor's appointments as requester, ordered by date.
func (e *Engine) ListAppointments(ctx context.Context, actorID int64, page Pagination) ([]models.Appointment, error) {
	if page.Limit == 0 {
		page.Limit = DefaultPageSize
	}
	if page.Limit < 1 || page.Limit > MaxPageSize {
		return nil, invalid(fmt.Errorf("limit must be between 1 and %d", MaxPageSize))
	}
	if page.Offset < 0 {
		return nil, invalid(fmt.Errorf("offset must not be negative"))
	}

	appts, err := e.store.ListByUser(ctx, actorID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments for user %d: %w", actorID, err)
	}
	return appts, nil
}

// ListSchedule returns the provider's active appointments on the calendar day
// of rawDay in the engine's zone, ordered by date.
func (e *Engine) ListSchedule(ctx context.Context, actorID int64, rawDay string) ([]models.Appointment, error) {
	n, err := e.directory.CountProviders(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("check provider %d: %w", actorID, err)
	}
	if n != 1 {
		return nil, ErrUnauthorized
	}

	day, err := ParseDate(rawDay, e.location)
	if err != nil {
		return nil, invalid(err)
	}

	day = day.In(e.location)
	from, to := StartOfDay(day).UTC(), EndOfDay(day).UTC()
	appts, err := e.store.ListByProviderBetween(ctx, actorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list schedule for provider %d: %w", actorID, err)
	}
	return appts, nil
}
