package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/takumidev/mercari-price-bot/internal/config"
)

// Mail sends the run summary over SMTP. It is a summary-only channel;
// per-error reporting goes through the chat sink.
type Mail struct {
	cfg  *config.Mail
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMail(cfg *config.Mail) *Mail {
	return &Mail{cfg: cfg, send: smtp.SendMail}
}

// Send delivers the run log as an HTML mail, one log line per row.
func (m *Mail) Send(subject, body string) error {
	htmlBody := strings.Join(strings.Split(body, "\n"), "<br />")

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", m.cfg.To),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTP.Host, m.cfg.SMTP.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.SMTP.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}
