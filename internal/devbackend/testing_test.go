package devbackend

import (
	"context"
	"sync"
	"time"
)

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (s *captureSender) SendVerificationOTP(_ context.Context, toEmail string, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[toEmail] = code
	return nil
}

func (s *captureSender) code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}
