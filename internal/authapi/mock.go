package authapi

import (
	"context"
	"sync"

	"kesnek-mobile/internal/domain"
)

// MockClient permite tests sin backend real. Cada metodo devuelve la
// respuesta y el error configurados y registra la llamada.
type MockClient struct {
	mu sync.Mutex

	LoginResp    domain.AuthResponse
	LoginErr     error
	RegisterResp domain.AuthResponse
	RegisterErr  error
	VerifyResp   domain.AuthResponse
	VerifyErr    error
	RefreshResp  domain.AuthResponse
	RefreshErr   error
	Jobs         []domain.SavedJob
	JobsErr      error
	// JobsGate, si no es nil, bloquea SavedJobs hasta recibir un valor.
	JobsGate chan struct{}

	Calls     []string
	AuthToken string
}

func (m *MockClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockClient) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockClient) CurrentAuthToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AuthToken
}

func (m *MockClient) LoginEmployee(_ context.Context, _, _ string) (domain.AuthResponse, error) {
	m.record("loginEmployee")
	return m.LoginResp, m.LoginErr
}

func (m *MockClient) LoginEmployer(_ context.Context, _, _ string) (domain.AuthResponse, error) {
	m.record("loginEmployer")
	return m.LoginResp, m.LoginErr
}

func (m *MockClient) RegisterEmployee(_ context.Context, _ domain.RegisterEmployeeInput) (domain.AuthResponse, error) {
	m.record("registerEmployee")
	return m.RegisterResp, m.RegisterErr
}

func (m *MockClient) RegisterEmployer(_ context.Context, _ domain.RegisterEmployerInput) (domain.AuthResponse, error) {
	m.record("registerEmployer")
	return m.RegisterResp, m.RegisterErr
}

func (m *MockClient) VerifyEmail(_ context.Context, _, _ string) (domain.AuthResponse, error) {
	m.record("verifyEmail")
	return m.VerifyResp, m.VerifyErr
}

func (m *MockClient) RefreshToken(_ context.Context, _ string) (domain.AuthResponse, error) {
	m.record("refreshToken")
	return m.RefreshResp, m.RefreshErr
}

func (m *MockClient) SavedJobs(ctx context.Context) ([]domain.SavedJob, error) {
	m.record("savedJobs")
	if m.JobsGate != nil {
		select {
		case <-m.JobsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Jobs, m.JobsErr
}

func (m *MockClient) SetAuthToken(token string) {
	m.record("setAuthToken")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthToken = token
}

func (m *MockClient) Logout() {
	m.record("logout")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthToken = ""
}
