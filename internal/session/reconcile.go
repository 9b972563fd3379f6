package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

// ErrNotEmployee se devuelve al sincronizar sin una sesion de empleado activa.
var ErrNotEmployee = errors.New("no employee session")

// reconcile lanza la sincronizacion del cache del rol sin bloquear. La tarea
// queda atada a gen, la generacion devuelta por adopt; si cambia, su
// resultado se descarta.
func (m *Manager) reconcile(gen string) {
	if m.reconciler == nil {
		return
	}
	timeout := m.reconcileTimeout
	if timeout <= 0 {
		timeout = defaultReconcileTimeout
	}

	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := m.reconciler.SyncWithBackend(ctx, m.commitFor(gen)); err != nil {
			if m.Generation() != gen {
				m.logger.Debug("reconciliation discarded", zap.Error(err))
				return
			}
			m.logger.Warn("reconciliation failed", zap.Error(err))
		}
	}()
}

// SyncNow sincroniza el cache en primer plano, con la misma regla de descarte
// que la reconciliacion en segundo plano.
func (m *Manager) SyncNow(ctx context.Context) error {
	if m.reconciler == nil {
		return errors.New("no reconciler configured")
	}
	snap := m.Snapshot()
	if snap.State != StateAuthenticated || snap.Session.Role != domain.RoleEmployee {
		return ErrNotEmployee
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	return m.reconciler.SyncWithBackend(ctx, m.commitFor(m.Generation()))
}

func (m *Manager) commitFor(gen string) func(apply func() error) error {
	return func(apply func() error) error {
		m.commitMu.Lock()
		defer m.commitMu.Unlock()
		if m.Generation() != gen {
			return ErrSessionChanged
		}
		return apply()
	}
}
