package smtp

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/go-care-nosql/internal/config"
	"github.com/jordan-wright/email"
)

const sendTimeout = 10 * time.Second

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	from string
	pool *email.Pool
}

// NewMailer opens a pooled SMTP connection set. Connections are dialled lazily
// by the pool, so an unreachable server surfaces on the first send.
func NewMailer(cfg *config.Config) (Mailer, error) {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
	pool, err := email.NewPool(addr, cfg.SMTPPoolSize, auth)
	if err != nil {
		return nil, fmt.Errorf("smtp pool: %w", err)
	}
	return &mailer{from: cfg.SMTPFrom, pool: pool}, nil
}

func (m *mailer) SendEmail(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	return m.pool.Send(e, sendTimeout)
}
