package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kesnek-mobile/internal/domain"
)

// SessionRecords traduce la sesion tipada a las claves fijas del KV.
type SessionRecords struct {
	kv     KV
	logger *zap.Logger
}

func NewSessionRecords(kv KV, logger *zap.Logger) *SessionRecords {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRecords{kv: kv, logger: logger}
}

func (r *SessionRecords) KV() KV {
	return r.kv
}

// Load lee las claves de sesion en paralelo. Los valores ilegibles se tratan
// como ausentes; la validacion todo-o-nada es responsabilidad del llamador.
func (r *SessionRecords) Load(ctx context.Context) (domain.Session, error) {
	var (
		token, refresh, user, role, employee, employer string
	)
	g, gctx := errgroup.WithContext(ctx)
	read := func(key string, dst *string) {
		g.Go(func() error {
			v, _, err := r.kv.Get(gctx, key)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}
	read(KeyToken, &token)
	read(KeyRefreshToken, &refresh)
	read(KeyUser, &user)
	read(KeyAccountType, &role)
	read(KeyEmployeeData, &employee)
	read(KeyEmployerData, &employer)
	if err := g.Wait(); err != nil {
		return domain.Session{}, err
	}

	s := domain.Session{
		AccessToken:  token,
		RefreshToken: refresh,
	}
	if role != "" {
		if parsed, ok := domain.ParseRole(role); ok {
			s.Role = parsed
		} else {
			r.logger.Warn("stored account type unknown", zap.String("account_type", role))
		}
	}
	s.Profile = decodeRecord[domain.UserProfile](r.logger, KeyUser, user)
	s.Employee = decodeRecord[domain.EmployeeProfile](r.logger, KeyEmployeeData, employee)
	s.Employer = decodeRecord[domain.EmployerProfile](r.logger, KeyEmployerData, employer)
	return s, nil
}

func decodeRecord[T any](logger *zap.Logger, key, raw string) *T {
	if raw == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.Warn("stored record unreadable", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &v
}

// Save escribe la sesion de forma secuencial. accountType se borra primero y se
// escribe al final: sin el, Load nunca adopta una escritura incompleta.
func (r *SessionRecords) Save(ctx context.Context, s domain.Session) error {
	if !s.Authenticated() || s.Profile == nil || !s.Role.Valid() {
		return errors.New("session records: incomplete session")
	}
	if err := r.kv.Remove(ctx, KeyAccountType); err != nil {
		return err
	}
	if s.RefreshToken != "" {
		if err := r.kv.Set(ctx, KeyRefreshToken, s.RefreshToken); err != nil {
			return err
		}
	} else if err := r.kv.Remove(ctx, KeyRefreshToken); err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeyToken, s.AccessToken); err != nil {
		return err
	}
	if err := r.setJSON(ctx, KeyUser, s.Profile); err != nil {
		return err
	}

	switch s.Role {
	case domain.RoleEmployee:
		if err := setOrRemove(ctx, r, KeyEmployeeData, s.Employee); err != nil {
			return err
		}
		// El cache de empleos guardados pertenece a la sesion reemplazada.
		if err := r.kv.RemoveMany(ctx, []string{KeyEmployerData, KeySavedJobs}); err != nil {
			return err
		}
	case domain.RoleEmployer:
		if err := setOrRemove(ctx, r, KeyEmployerData, s.Employer); err != nil {
			return err
		}
		if err := r.kv.RemoveMany(ctx, []string{KeyEmployeeData, KeySavedJobs}); err != nil {
			return err
		}
	}
	return r.kv.Set(ctx, KeyAccountType, string(s.Role))
}

// SaveTokens reemplaza solo los tokens de una sesion ya persistida.
func (r *SessionRecords) SaveTokens(ctx context.Context, access, refresh string) error {
	if access == "" {
		return errors.New("session records: empty access token")
	}
	if refresh != "" {
		if err := r.kv.Set(ctx, KeyRefreshToken, refresh); err != nil {
			return err
		}
	}
	return r.kv.Set(ctx, KeyToken, access)
}

// Clear elimina cada clave de sesion por separado: una falla no frena las demas.
func (r *SessionRecords) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range SessionKeys {
		if err := r.kv.Remove(ctx, key); err != nil {
			r.logger.Warn("session key removal failed", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *SessionRecords) SavePending(ctx context.Context, p domain.PendingVerification) error {
	return r.setJSON(ctx, KeyPendingVerification, p)
}

func (r *SessionRecords) LoadPending(ctx context.Context) (*domain.PendingVerification, error) {
	raw, ok, err := r.kv.Get(ctx, KeyPendingVerification)
	if err != nil || !ok {
		return nil, err
	}
	return decodeRecord[domain.PendingVerification](r.logger, KeyPendingVerification, raw), nil
}

func (r *SessionRecords) ClearPending(ctx context.Context) error {
	return r.kv.Remove(ctx, KeyPendingVerification)
}

func setOrRemove[T any](ctx context.Context, r *SessionRecords, key string, v *T) error {
	if v == nil {
		return r.kv.Remove(ctx, key)
	}
	return r.setJSON(ctx, key, v)
}

func (r *SessionRecords) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.kv.Set(ctx, key, string(data))
}
