package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

// Login autentica contra el endpoint del rol. Nunca devuelve error: las
// fallas quedan en LastError y la sesion previa no se toca.
func (m *Manager) Login(ctx context.Context, email, password string, role domain.Role) bool {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	m.ClearError()

	var (
		resp domain.AuthResponse
		err  error
	)
	switch role {
	case domain.RoleEmployee:
		resp, err = m.api.LoginEmployee(ctx, email, password)
	case domain.RoleEmployer:
		resp, err = m.api.LoginEmployer(ctx, email, password)
	default:
		m.fail(MsgAccountTypeRequired)
		return false
	}
	if err != nil {
		m.logger.Warn("login request failed", zap.String("role", string(role)), zap.Error(err))
		m.fail(MsgLoginFailed)
		return false
	}
	return m.completeAuth(ctx, "login", email, role, resp, MsgLoginFailed)
}

func (m *Manager) RegisterEmployee(ctx context.Context, in domain.RegisterEmployeeInput) bool {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	m.ClearError()

	resp, err := m.api.RegisterEmployee(ctx, in)
	if err != nil {
		m.logger.Warn("register employee request failed", zap.Error(err))
		m.fail(MsgRegisterFailed)
		return false
	}
	return m.completeRegistration(ctx, in.Email, domain.RoleEmployee, resp)
}

func (m *Manager) RegisterEmployer(ctx context.Context, in domain.RegisterEmployerInput) bool {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	m.ClearError()

	resp, err := m.api.RegisterEmployer(ctx, in)
	if err != nil {
		m.logger.Warn("register employer request failed", zap.Error(err))
		m.fail(MsgRegisterFailed)
		return false
	}
	return m.completeRegistration(ctx, in.Email, domain.RoleEmployer, resp)
}

// completeRegistration distingue el alta con sesion inmediata del alta que
// requiere verificar el email antes del login automatico.
func (m *Manager) completeRegistration(ctx context.Context, email string, role domain.Role, resp domain.AuthResponse) bool {
	if !resp.Flag || resp.Token != "" || resp.VerificationTicket == "" {
		return m.completeAuth(ctx, "register", email, role, resp, MsgRegisterFailed)
	}

	expiresAt := m.now().Add(defaultVerificationTTL)
	if resp.TicketExpiresAt != nil {
		expiresAt = resp.TicketExpiresAt.UTC()
	}
	pending := domain.PendingVerification{
		Email:     strings.TrimSpace(email),
		Role:      role,
		Ticket:    resp.VerificationTicket,
		ExpiresAt: expiresAt,
	}
	if err := m.records.SavePending(ctx, pending); err != nil {
		m.logger.Warn("persist pending verification failed", zap.Error(err))
	}
	m.update(func() { m.pending = &pending })
	m.logger.Info("registration awaiting email verification", zap.String("role", string(role)))
	return true
}

// VerifyEmail canjea el ticket pendiente y el codigo por una sesion.
func (m *Manager) VerifyEmail(ctx context.Context, code string) bool {
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	m.ClearError()

	pending := m.PendingVerification()
	if pending == nil {
		m.fail(MsgNoPendingVerify)
		return false
	}
	if pending.Expired(m.now()) {
		m.dropPending(ctx)
		m.fail(MsgVerificationExpired)
		return false
	}

	resp, err := m.api.VerifyEmail(ctx, pending.Ticket, strings.TrimSpace(code))
	if err != nil {
		m.logger.Warn("verify email request failed", zap.Error(err))
		m.fail(MsgVerifyFailed)
		return false
	}
	return m.completeAuth(ctx, "verify", pending.Email, pending.Role, resp, MsgVerifyFailed)
}

// completeAuth aplica una respuesta exitosa: persistir, luego adoptar en memoria.
func (m *Manager) completeAuth(ctx context.Context, op, email string, role domain.Role, resp domain.AuthResponse, fallback string) bool {
	if !resp.Flag {
		m.fail(messageOr(resp.Message, fallback))
		return false
	}
	if resp.Token == "" {
		m.logger.Warn("auth response without token", zap.String("op", op))
		m.fail(fallback)
		return false
	}

	profile := resp.User
	if profile == nil {
		// Compatibilidad con backends que omiten user en respuestas exitosas.
		p := domain.PlaceholderProfile(email)
		profile = &p
		m.logger.Warn("auth response without user; using placeholder profile", zap.String("op", op))
	}
	s := domain.Session{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		Role:         role,
		Profile:      profile,
	}
	switch role {
	case domain.RoleEmployee:
		s.Employee = resp.EmployeeData
	case domain.RoleEmployer:
		s.Employer = resp.EmployerData
	}

	m.commitMu.Lock()
	if err := m.records.Save(ctx, s); err != nil {
		m.logger.Warn("persist session failed", zap.String("op", op), zap.Error(err))
	}
	m.api.SetAuthToken(s.AccessToken)
	gen := m.adopt(s)
	m.commitMu.Unlock()

	if m.PendingVerification() != nil {
		m.dropPending(ctx)
	}
	m.logger.Info("session established", zap.String("op", op), zap.String("role", string(role)), zap.String("user_id", profile.ID))

	if role == domain.RoleEmployee {
		m.reconcile(gen)
	}
	return true
}

func (m *Manager) dropPending(ctx context.Context) {
	if err := m.records.ClearPending(ctx); err != nil {
		m.logger.Warn("clear pending verification failed", zap.Error(err))
	}
	m.update(func() { m.pending = nil })
}

// RefreshSession renueva el access token. Un rechazo del backend es una
// falla fatal de autenticacion y dispara el logout completo.
func (m *Manager) RefreshSession(ctx context.Context) bool {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	current := m.Snapshot().Session
	if !current.Authenticated() || current.RefreshToken == "" {
		return false
	}
	resp, err := m.api.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		m.logger.Warn("refresh request failed", zap.Error(err))
		return false
	}
	if !resp.Flag || resp.Token == "" {
		m.logger.Info("refresh token rejected; logging out", zap.String("message", resp.Message))
		m.Logout(ctx)
		m.fail(MsgSessionExpired)
		return false
	}

	m.commitMu.Lock()
	defer m.commitMu.Unlock()
	if m.Snapshot().Session.AccessToken != current.AccessToken {
		m.logger.Info("refresh result discarded; session changed")
		return false
	}
	next := current
	next.AccessToken = resp.Token
	if resp.RefreshToken != "" {
		next.RefreshToken = resp.RefreshToken
	}
	if err := m.records.SaveTokens(ctx, next.AccessToken, next.RefreshToken); err != nil {
		m.logger.Warn("persist refreshed tokens failed", zap.Error(err))
	}
	m.api.SetAuthToken(next.AccessToken)
	m.update(func() { m.session = next })
	return true
}
