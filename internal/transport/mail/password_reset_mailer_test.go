package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/njprem/lighthouse-api/internal/service"
)

var _ service.PasswordResetMailer = (*PasswordResetMailer)(nil)

func TestSendPasswordReset(t *testing.T) {
	m := NewPasswordResetMailer("smtp.example.com", "587", "user", "pass", "noreply@example.com")
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg, gotAuth = addr, to, string(msg), a
		return nil
	}

	err := m.SendPasswordReset(context.Background(), service.PasswordResetMessage{
		To:        "alice@example.com",
		Name:      "Alice",
		Link:      "https://app.example.com/reset-password?token=abc",
		ExpiresAt: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SendPasswordReset returned error: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" || gotAuth == nil {
		t.Fatalf("unexpected envelope addr=%s to=%v", gotAddr, gotTo)
	}
	for _, want := range []string{"To: alice@example.com\r\n", "Hi Alice,", "https://app.example.com/reset-password?token=abc", "2024-03-01 13:00 UTC"} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestSendPasswordReset_Unconfigured(t *testing.T) {
	m := NewPasswordResetMailer("", "", "", "", "")
	if m.Configured() {
		t.Fatalf("mailer without host must not be configured")
	}
	if err := m.SendPasswordReset(context.Background(), service.PasswordResetMessage{To: "a@example.com"}); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func TestSendPasswordReset_HeaderInjection(t *testing.T) {
	m := NewPasswordResetMailer("smtp.example.com", "25", "", "", "noreply@example.com")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatalf("send must not be called")
		return nil
	}
	if err := m.SendPasswordReset(context.Background(), service.PasswordResetMessage{To: "a@example.com\r\nBcc: x@example.com"}); err == nil {
		t.Fatalf("expected recipient error")
	}
}

func TestSendPasswordReset_WrapsTransportError(t *testing.T) {
	m := NewPasswordResetMailer("smtp.example.com", "25", "", "", "noreply@example.com")
	boom := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	if err := m.SendPasswordReset(context.Background(), service.PasswordResetMessage{To: "a@example.com"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}
