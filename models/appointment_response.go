// models/appointment_response.go
package models

import "time"

// AvatarResponse is the public view of a provider avatar.
type AvatarResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// UserSummary is the trimmed user shape embedded in appointment listings.
type UserSummary struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Avatar *AvatarResponse `json:"avatar"`
}

// AppointmentResponse is the list item returned to API callers, with the
// derived past/cancelable flags evaluated at response time.
type AppointmentResponse struct {
	ID         int64        `json:"id"`
	Date       time.Time    `json:"date"`
	Past       bool         `json:"past"`
	Cancelable bool         `json:"cancelable"`
	CanceledAt *time.Time   `json:"canceled_at,omitempty"`
	Provider   *UserSummary `json:"provider,omitempty"`
	User       *UserSummary `json:"user,omitempty"`
}
