package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gobarber/models"
)

const cancellationSubject = "Appointment canceled"

// CancellationMail handles the CancellationMail job: it tells the provider,
// copying the requester, that a slot was released.
type CancellationMail struct {
	mailer   Mailer
	location *time.Location
	logger   *zap.Logger
}

func NewCancellationMail(mailer Mailer, location *time.Location, logger *zap.Logger) *CancellationMail {
	if location == nil {
		location = time.UTC
	}
	return &CancellationMail{mailer: mailer, location: location, logger: logger}
}

// Key is the queue key this handler is registered under.
func (j *CancellationMail) Key() string {
	return models.JobCancellationMail
}

func (j *CancellationMail) Handle(ctx context.Context, payload []byte) error {
	var p models.CancellationMailPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode cancellation payload: %w", err)
	}
	appt := p.Appointment
	if appt.Provider.Email == "" {
		return fmt.Errorf("appointment %d: provider has no email", appt.ID)
	}

	msg := Message{
		To:      []string{formatAddress(appt.Provider)},
		Subject: cancellationSubject,
		Body:    j.body(appt),
	}
	if appt.User.Email != "" {
		msg.Cc = []string{formatAddress(appt.User)}
	}

	if err := j.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send cancellation mail for appointment %d: %w", appt.ID, err)
	}
	j.logger.Info("Cancellation mail sent", zap.Int64("appointment_id", appt.ID))
	return nil
}

func (j *CancellationMail) body(appt models.CanceledAppointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", appt.Provider.Name)
	fmt.Fprintf(&b, "%s canceled the appointment scheduled for %s.\r\n",
		appt.User.Name, appt.Date.In(j.location).Format("Monday, January 2 at 15:04 MST"))
	b.WriteString("The slot is available for new bookings.\r\n")
	return b.String()
}

func formatAddress(c models.Contact) string {
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}
