package savedjobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
	"kesnek-mobile/internal/store"
)

// Fetcher obtiene los empleos guardados del backend.
type Fetcher interface {
	SavedJobs(ctx context.Context) ([]domain.SavedJob, error)
}

// Service mantiene el cache local de empleos guardados del empleado.
type Service struct {
	fetcher Fetcher
	kv      store.KV
	logger  *zap.Logger
}

func NewService(fetcher Fetcher, kv store.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, kv: kv, logger: logger}
}

// SyncWithBackend reemplaza el cache con la lista del backend. La escritura
// pasa por commit, que puede rechazarla si la sesion cambio durante la llamada.
// commit nil escribe directamente.
func (s *Service) SyncWithBackend(ctx context.Context, commit func(apply func() error) error) error {
	if s.fetcher == nil || s.kv == nil {
		return errors.New("saved jobs service not configured")
	}
	jobs, err := s.fetcher.SavedJobs(ctx)
	if err != nil {
		return fmt.Errorf("fetch saved jobs: %w", err)
	}
	if jobs == nil {
		jobs = []domain.SavedJob{}
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode saved jobs: %w", err)
	}
	apply := func() error {
		return s.kv.Set(ctx, store.KeySavedJobs, string(data))
	}
	if commit == nil {
		err = apply()
	} else {
		err = commit(apply)
	}
	if err != nil {
		return err
	}
	s.logger.Debug("saved jobs synced", zap.Int("count", len(jobs)))
	return nil
}

// Cached devuelve la ultima lista sincronizada; un cache ilegible se trata como vacio.
func (s *Service) Cached(ctx context.Context) ([]domain.SavedJob, error) {
	raw, ok, err := s.kv.Get(ctx, store.KeySavedJobs)
	if err != nil || !ok {
		return nil, err
	}
	var jobs []domain.SavedJob
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		s.logger.Warn("saved jobs cache unreadable", zap.Error(err))
		return nil, nil
	}
	return jobs, nil
}
