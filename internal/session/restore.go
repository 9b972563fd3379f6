package session

import (
	"context"

	"go.uber.org/zap"

	"kesnek-mobile/internal/authapi"
	"kesnek-mobile/internal/domain"
	"kesnek-mobile/internal/store"
)

// RestoreSession reconstruye la sesion desde el almacenamiento. Se llama una
// vez al arrancar; al terminar el estado nunca queda en bootstrapping.
func (m *Manager) RestoreSession(ctx context.Context) {
	defer m.finishBootstrap()

	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if m.storageSchema != "" {
		reset, err := store.ResetIfStale(ctx, m.records.KV(), m.storageSchema)
		switch {
		case err != nil:
			m.logger.Warn("storage reset failed", zap.Error(err))
		case reset:
			m.logger.Info("storage reset to current schema", zap.String("schema", m.storageSchema))
		}
	}

	m.restorePending(ctx)

	stored, err := m.records.Load(ctx)
	if err != nil {
		m.logger.Warn("restore session read failed", zap.Error(err))
		return
	}
	if stored.Profile == nil || stored.AccessToken == "" || !stored.Role.Valid() {
		if !stored.Empty() {
			m.logger.Info("stored session incomplete; ignoring",
				zap.Bool("has_token", stored.AccessToken != ""),
				zap.Bool("has_profile", stored.Profile != nil),
				zap.Bool("has_role", stored.Role.Valid()),
			)
		}
		return
	}
	switch stored.Role {
	case domain.RoleEmployee:
		stored.Employer = nil
	case domain.RoleEmployer:
		stored.Employee = nil
	}

	if m.refreshOnRestore && stored.RefreshToken != "" && authapi.TokenExpired(stored.AccessToken, m.now(), refreshSkew) {
		resp, err := m.api.RefreshToken(ctx, stored.RefreshToken)
		switch {
		case err != nil:
			m.logger.Warn("restore token refresh failed; keeping stored session", zap.Error(err))
		case !resp.Flag || resp.Token == "":
			m.logger.Info("stored refresh token rejected", zap.String("message", resp.Message))
			m.commitMu.Lock()
			if err := m.records.Clear(ctx); err != nil {
				m.logger.Warn("clear rejected session failed", zap.Error(err))
			}
			m.commitMu.Unlock()
			m.fail(MsgSessionExpired)
			return
		default:
			stored.AccessToken = resp.Token
			if resp.RefreshToken != "" {
				stored.RefreshToken = resp.RefreshToken
			}
			if err := m.records.SaveTokens(ctx, stored.AccessToken, stored.RefreshToken); err != nil {
				m.logger.Warn("persist refreshed tokens failed", zap.Error(err))
			}
		}
	}

	m.commitMu.Lock()
	m.api.SetAuthToken(stored.AccessToken)
	gen := m.adopt(stored)
	m.commitMu.Unlock()
	m.logger.Info("session restored", zap.String("role", string(stored.Role)), zap.String("user_id", stored.Profile.ID))

	if stored.Role == domain.RoleEmployee && stored.Employee != nil {
		m.reconcile(gen)
	}
}

func (m *Manager) restorePending(ctx context.Context) {
	pending, err := m.records.LoadPending(ctx)
	if err != nil {
		m.logger.Warn("restore pending verification failed", zap.Error(err))
		return
	}
	if pending == nil {
		return
	}
	if pending.Expired(m.now()) || pending.Ticket == "" {
		if err := m.records.ClearPending(ctx); err != nil {
			m.logger.Warn("clear stale pending verification failed", zap.Error(err))
		}
		return
	}
	m.update(func() { m.pending = pending })
}

func (m *Manager) finishBootstrap() {
	m.update(func() {
		if m.state == StateBootstrapping {
			m.state = StateUnauthenticated
		}
	})
}
