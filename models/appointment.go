// models/appointment.go
package models

import "time"

// CancellationWindow is how long before the slot an appointment stops being cancelable.
const CancellationWindow = 2 * time.Hour

// Appointment is a booked slot between a requester (UserID) and a provider.
// Rows are never deleted or moved; cancellation only sets CanceledAt.
type Appointment struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	Date       time.Time  `gorm:"not null" json:"date"`                      // Hour-aligned slot start, UTC
	UserID     int64      `gorm:"not null;index" json:"user_id"`             // Requester
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`   // Requester summary, when loaded
	ProviderID int64      `gorm:"not null;index" json:"provider_id"`         // Provider being booked
	Provider   *User      `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	CanceledAt *time.Time `json:"canceled_at"`                               // Nil while scheduled
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Canceled reports whether the appointment left the Scheduled state.
func (a *Appointment) Canceled() bool {
	return a.CanceledAt != nil
}

// Past reports whether the slot has already started at now.
func (a *Appointment) Past(now time.Time) bool {
	return a.Date.Before(now)
}

// Cancelable reports whether now is still ahead of the cancellation cutoff.
func (a *Appointment) Cancelable(now time.Time) bool {
	return now.Before(a.Date.Add(-CancellationWindow))
}
