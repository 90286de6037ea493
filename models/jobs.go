package models

import "time"

// JobCancellationMail is the queue key of the cancellation email job.
const JobCancellationMail = "CancellationMail"

// Contact is the name/email summary embedded in job payloads.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CancellationMailPayload is the snapshot of a canceled appointment handed to the
// mail worker. It carries everything the worker needs so it never reads the store.
type CancellationMailPayload struct {
	Appointment CanceledAppointment `json:"appointment"`
}

type CanceledAppointment struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	CanceledAt time.Time `json:"canceled_at"`
	Provider   Contact   `json:"provider"`
	User       Contact   `json:"user"`
}

// NewCancellationMailPayload builds the job payload from a loaded appointment.
func NewCancellationMailPayload(a *Appointment) CancellationMailPayload {
	p := CancellationMailPayload{
		Appointment: CanceledAppointment{
			ID:   a.ID,
			Date: a.Date,
		},
	}
	if a.CanceledAt != nil {
		p.Appointment.CanceledAt = *a.CanceledAt
	}
	if a.Provider != nil {
		p.Appointment.Provider = Contact{Name: a.Provider.Name, Email: a.Provider.Email}
	}
	if a.User != nil {
		p.Appointment.User = Contact{Name: a.User.Name, Email: a.User.Email}
	}
	return p
}
