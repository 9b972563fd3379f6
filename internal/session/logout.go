package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

// Logout borra las claves de sesion una por una y resetea la memoria aunque
// el almacenamiento falle. Es idempotente.
func (m *Manager) Logout(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cleanupTimeout())
	defer cancel()

	m.commitMu.Lock()
	defer m.commitMu.Unlock()

	// La generacion cambia antes de tocar el disco: un commit tardio ya no aplica.
	m.update(func() {
		m.session = domain.Session{}
		m.state = StateUnauthenticated
		m.generation = uuid.NewString()
		m.lastErr = ""
	})
	if err := m.records.Clear(ctx); err != nil {
		m.logger.Warn("logout cleanup incomplete", zap.Error(err))
	}
	m.api.Logout()
	m.logger.Info("logged out")
}

func (m *Manager) cleanupTimeout() time.Duration {
	if m.requestTimeout > 0 {
		return m.requestTimeout
	}
	return defaultRequestTimeout
}
