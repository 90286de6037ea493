package cli

import (
	"testing"

	"go.uber.org/zap"

	"gobarber/config"
	"gobarber/models"
	"gobarber/services/mail"
)

func testEnvironment() *environment {
	return &environment{
		cfg: &config.Config{
			Timezone:      "UTC",
			RedisAddr:     "redis:6379",
			RedisQueueDB:  2,
			QueueWorkers:  3,
			QueueMaxRetry: 1,
			MailPort:      587,
			MailFrom:      "GoBarber <noreply@gobarber.com>",
		},
		logger: zap.NewNop(),
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "worker", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not found: %v", name, err)
		}
	}
}

func TestJobRegistryBindsCancellationMail(t *testing.T) {
	a := newApp(testEnvironment())
	keys := a.jobRegistry().Keys()
	if len(keys) != 1 || keys[0] != models.JobCancellationMail {
		t.Fatalf("keys = %v, want [%s]", keys, models.JobCancellationMail)
	}
}

func TestMailerSelection(t *testing.T) {
	env := testEnvironment()
	if _, ok := newApp(env).mailer().(*mail.LogMailer); !ok {
		t.Error("empty MAIL_HOST should log mail instead of sending it")
	}
	env.cfg.MailHost = "smtp.example.com"
	if _, ok := newApp(env).mailer().(*mail.SMTPMailer); !ok {
		t.Error("MAIL_HOST set should select the SMTP mailer")
	}
}

func TestAsynqConfigFromSettings(t *testing.T) {
	cfg := newApp(testEnvironment()).asynqConfig()
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.MaxRetry != 1 || cfg.Concurrency != 3 {
		t.Errorf("max retry %d concurrency %d", cfg.MaxRetry, cfg.Concurrency)
	}
}
