package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"gobarber/models"
)

type captureMailer struct {
	sent []Message
	err  error
}

func (m *captureMailer) Send(ctx context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func payloadJSON(t *testing.T, a *models.Appointment) []byte {
	t.Helper()
	b, err := json.Marshal(models.NewCancellationMailPayload(a))
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func sampleAppointment() *models.Appointment {
	canceledAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	return &models.Appointment{
		ID:         42,
		Date:       time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		CanceledAt: &canceledAt,
		Provider:   &models.User{Name: "Carla", Email: "carla@example.com"},
		User:       &models.User{Name: "Diego", Email: "diego@example.com"},
	}
}

func TestCancellationMailHandle(t *testing.T) {
	mailer := &captureMailer{}
	job := NewCancellationMail(mailer, time.UTC, zap.NewNop())

	if err := job.Handle(context.Background(), payloadJSON(t, sampleAppointment())); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.Subject != "Appointment canceled" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "Carla <carla@example.com>" {
		t.Errorf("to = %v", msg.To)
	}
	if len(msg.Cc) != 1 || msg.Cc[0] != "Diego <diego@example.com>" {
		t.Errorf("cc = %v", msg.Cc)
	}
	if !strings.Contains(msg.Body, "Diego canceled") || !strings.Contains(msg.Body, "January 10 at 15:00") {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestCancellationMailHandleErrors(t *testing.T) {
	noProvider := sampleAppointment()
	noProvider.Provider = nil

	tests := []struct {
		name    string
		payload []byte
		mailer  *captureMailer
	}{
		{name: "bad json", payload: []byte("{"), mailer: &captureMailer{}},
		{name: "no provider email", payload: payloadJSON(t, noProvider), mailer: &captureMailer{}},
		{name: "mailer down", payload: payloadJSON(t, sampleAppointment()), mailer: &captureMailer{err: errors.New("refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewCancellationMail(tt.mailer, nil, zap.NewNop())
			if err := job.Handle(context.Background(), tt.payload); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSMTPMailerSend(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "GoBarber <noreply@gobarber.com>"}, zap.NewNop())
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{
		To:      []string{"Carla <carla@example.com>"},
		Cc:      []string{"diego@example.com"},
		Subject: "Appointment canceled",
		Body:    "hello",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:2525" || gotFrom != "noreply@gobarber.com" {
		t.Errorf("addr/from = %s / %s", gotAddr, gotFrom)
	}
	if len(gotTo) != 2 || gotTo[0] != "carla@example.com" || gotTo[1] != "diego@example.com" {
		t.Errorf("envelope recipients = %v, want bare to+cc", gotTo)
	}
	for _, header := range []string{"Subject: Appointment canceled\r\n", "Cc: diego@example.com\r\n", "\r\n\r\nhello"} {
		if !strings.Contains(gotMsg, header) {
			t.Errorf("message missing %q:\n%s", header, gotMsg)
		}
	}

	if err := m.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Error("expected an error without recipients")
	}
}
