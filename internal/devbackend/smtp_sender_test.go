package devbackend

import (
	"strings"
	"testing"
	"time"
)

func TestNewSMTPSender_Validation(t *testing.T) {
	if _, err := NewSMTPSender("", 0, "", "", "noreply@kesnek.com", "", false); err == nil {
		t.Fatalf("expected error for missing host")
	}
	if _, err := NewSMTPSender("smtp.local", 0, "", "", "", "", false); err == nil {
		t.Fatalf("expected error for missing from")
	}
	s, err := NewSMTPSender("smtp.local", 0, "", "", "noreply@kesnek.com", "Kesnek", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestVerificationMessage(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := verificationMessage("noreply@kesnek.com", "Kesnek", "jane@x.com", "123456", exp)
	for _, want := range []string{
		"From: Kesnek <noreply@kesnek.com>",
		"To: jane@x.com",
		"123456",
		"2026-01-02T03:04:05Z",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if !strings.Contains(msg, "\r\n\r\n") {
		t.Fatalf("expected header/body separator")
	}
}
