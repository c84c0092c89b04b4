package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/njprem/lighthouse-api/internal/service"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// PasswordResetMailer sends reset links over SMTP.
type PasswordResetMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	send     sendFunc
}

func NewPasswordResetMailer(host, port, username, password, from string) *PasswordResetMailer {
	return &PasswordResetMailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		send:     smtp.SendMail,
	}
}

// Configured reports whether enough settings are present to send mail.
func (m *PasswordResetMailer) Configured() bool {
	return m != nil && m.host != "" && m.port != "" && m.from != ""
}

func (m *PasswordResetMailer) SendPasswordReset(ctx context.Context, msg service.PasswordResetMessage) error {
	if !m.Configured() {
		return errors.New("mailer missing configuration")
	}
	if strings.ContainsAny(msg.To, "\r\n") {
		return errors.New("mailer: invalid recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.username != "" || m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := net.JoinHostPort(m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

func (m *PasswordResetMailer) compose(msg service.PasswordResetMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	b.WriteString("Subject: Reset your Lighthouse password\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", msg.Name)
	b.WriteString("Open the link below to choose a new password:\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", msg.Link)
	fmt.Fprintf(&b, "The link expires at %s and can be used once.\r\n", msg.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString("If you did not ask for this, ignore this email.\r\n")
	return []byte(b.String())
}
