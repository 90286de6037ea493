package handlers

import (
	"time"

	"gobarber/models"
	"gobarber/services/storage"
)

func presentAppointments(appts []models.Appointment, now time.Time, files storage.URLResolver) []models.AppointmentResponse {
	out := make([]models.AppointmentResponse, 0, len(appts))
	for i := range appts {
		a := &appts[i]
		out = append(out, models.AppointmentResponse{
			ID:         a.ID,
			Date:       a.Date,
			Past:       a.Past(now),
			Cancelable: a.Cancelable(now),
			CanceledAt: a.CanceledAt,
			Provider:   summarize(a.Provider, files),
			User:       summarize(a.User, files),
		})
	}
	return out
}

func summarize(u *models.User, files storage.URLResolver) *models.UserSummary {
	if u == nil {
		return nil
	}
	s := &models.UserSummary{ID: u.ID, Name: u.Name}
	if u.Avatar != nil {
		s.Avatar = &models.AvatarResponse{Path: u.Avatar.Path, URL: files.URL(u.Avatar.Path)}
	}
	return s
}
