package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gobarber/models"
	"gobarber/services/queue"
)

// AppointmentStore persists appointments. Implementations return
// repository.ErrConflict from Create when the provider slot is already held,
// and repository.ErrStale from MarkCanceled when the row was canceled meanwhile.
type AppointmentStore interface {
	// FindByID loads an appointment with provider and requester contacts. A
	// missing row yields (nil, nil).
	FindByID(ctx context.Context, id int64) (*models.Appointment, error)
	CountActiveAt(ctx context.Context, providerID int64, date time.Time) (int64, error)
	Create(ctx context.Context, a *models.Appointment) error
	MarkCanceled(ctx context.Context, a *models.Appointment) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Appointment, error)
	ListByProviderBetween(ctx context.Context, providerID int64, from, to time.Time) ([]models.Appointment, error)
}

// Directory answers questions about users.
type Directory interface {
	// CountProviders counts users with the given id that carry the provider flag.
	CountProviders(ctx context.Context, id int64) (int64, error)
	// FindByID returns (nil, nil) for an unknown id.
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// NotificationSink stores provider-facing notifications.
type NotificationSink interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// Engine enforces the booking and cancellation rules.
type Engine struct {
	store         AppointmentStore
	directory     Directory
	notifications NotificationSink
	jobs          queue.Queue
	clock         Clock
	location      *time.Location
	logger        *zap.Logger
}

type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLocation sets the zone used for offset-less dates and day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.location = loc }
}

func NewEngine(
	store AppointmentStore,
	directory Directory,
	notifications NotificationSink,
	jobs queue.Queue,
	logger *zap.Logger,
	opts ...Option,
) (*Engine, error) {
	if store == nil || directory == nil || notifications == nil || jobs == nil {
		return nil, fmt.Errorf("scheduling engine initialization error: store, directory, notifications and queue are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:         store,
		directory:     directory,
		notifications: notifications,
		jobs:          jobs,
		clock:         SystemClock(),
		location:      time.UTC,
		logger:        logger.With(zap.String("component", "scheduling")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Now is the engine's notion of the current instant, used for derived flags.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Location is the zone offset-less input is read in.
func (e *Engine) Location() *time.Location {
	return e.location
}
