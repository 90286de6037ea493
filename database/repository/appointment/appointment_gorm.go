package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gobarber/database/repository"
	"gobarber/models"
)

const queryTimeout = 5 * time.Second

// GormAppointmentRepo stores appointments in the relational database.
type GormAppointmentRepo struct {
	db *gorm.DB
}

func NewGormAppointmentRepo(db *gorm.DB) *GormAppointmentRepo {
	return &GormAppointmentRepo{db: db}
}

// newContext bounds every query by queryTimeout on top of the caller's context.
func newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func contactColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func summaryColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar_id")
}

func avatarColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "path")
}

// FindByID loads an appointment with provider and requester name/email.
func (r *GormAppointmentRepo) FindByID(ctx context.Context, id int64) (*models.Appointment, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var appt models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Provider", contactColumns).
		Preload("User", contactColumns).
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve appointment %d: %w", id, err)
	}
	return &appt, nil
}

// CountActiveAt counts non-canceled appointments holding the provider's slot.
func (r *GormAppointmentRepo) CountActiveAt(ctx context.Context, providerID int64, date time.Time) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("provider_id = ? AND date = ? AND canceled_at IS NULL", providerID, date.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

// Create inserts a new appointment. A held slot yields repository.ErrConflict.
func (r *GormAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	appt.Date = appt.Date.UTC()
	if err := r.db.WithContext(ctx).Create(appt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("provider %d at %s: %w", appt.ProviderID, appt.Date.Format(time.RFC3339), repository.ErrConflict)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// MarkCanceled writes appt.CanceledAt only if the row is still active, so
// concurrent cancellations cannot both succeed.
func (r *GormAppointmentRepo) MarkCanceled(ctx context.Context, appt *models.Appointment) error {
	if appt.CanceledAt == nil {
		return fmt.Errorf("appointment %d has no cancellation time", appt.ID)
	}
	ctx, cancel := newContext(ctx)
	defer cancel()

	canceledAt := appt.CanceledAt.UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND canceled_at IS NULL", appt.ID).
		Updates(map[string]any{"canceled_at": canceledAt, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel appointment %d: %w", appt.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("appointment %d: %w", appt.ID, repository.ErrStale)
	}
	appt.CanceledAt = &canceledAt
	return nil
}

// ListByUser pages through a requester's appointments in date order, with
// provider summary and avatar.
func (r *GormAppointmentRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.Appointment, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Provider", summaryColumns).
		Preload("Provider.Avatar", avatarColumns).
		Where("user_id = ?", userID).
		Order("date ASC").Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for user %d: %w", userID, err)
	}
	return appts, nil
}

// ListByProviderBetween returns the provider's active appointments with
// from <= date <= to, with requester summary and avatar.
func (r *GormAppointmentRepo) ListByProviderBetween(ctx context.Context, providerID int64, from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("User", summaryColumns).
		Preload("User.Avatar", avatarColumns).
		Where("provider_id = ? AND canceled_at IS NULL AND date BETWEEN ? AND ?", providerID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule for provider %d: %w", providerID, err)
	}
	return appts, nil
}
