package devbackend

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CodeSender entrega codigos de verificacion de email.
type CodeSender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

type logSender struct {
	logger *zap.Logger
}

// NewLogSender escribe el codigo en el log; solo para desarrollo local.
func NewLogSender(logger *zap.Logger) CodeSender {
	return &logSender{logger: logger}
}

func (s *logSender) SendVerificationOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	s.logger.Info("verification code issued",
		zap.String("email", toEmail),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
