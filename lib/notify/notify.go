package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	Recipients   []string `json:"recipients"`
}

// Mailer sends operational mail (ingest failures, empties reports)
// over plain SMTP.
type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

func (m Mailer) Enabled() bool {
	return m.config.Server != "" && len(m.config.Recipients) > 0
}

func (m Mailer) Send(subject, body string) error {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Mensa Fetcher <%s>", m.config.EmailAddress)
	mail.To = m.config.Recipients
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	return err
}

// SendOrLog delivers a notification without letting a broken mail
// setup mask the error that triggered it.
func (m Mailer) SendOrLog(subject, body string) {
	if !m.Enabled() {
		return
	}
	err := m.Send(subject, body)
	if err != nil {
		slog.Warn("failed to send notification mail", "subject", subject, "err", err)
	}
}
