package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kesnek-mobile/internal/authapi"
	"kesnek-mobile/internal/domain"
	"kesnek-mobile/internal/store"
)

// State es el estado de autenticacion durante la vida de la app.
type State int

const (
	StateBootstrapping State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Mensajes visibles para el usuario. Nunca incluyen el detalle del error.
const (
	MsgLoginFailed         = "Login failed. Please check your credentials and try again."
	MsgRegisterFailed      = "Registration failed. Please try again."
	MsgVerifyFailed        = "Verification failed. Please try again."
	MsgNoPendingVerify     = "There is no pending verification. Please register again."
	MsgVerificationExpired = "The verification code has expired. Please register again."
	MsgSessionExpired      = "Your session has expired. Please log in again."
	MsgAccountTypeRequired = "Please select an account type."
)

const (
	defaultVerificationTTL  = 30 * time.Minute
	refreshSkew             = 30 * time.Second
	defaultRequestTimeout   = 15 * time.Second
	defaultReconcileTimeout = 30 * time.Second
)

// ErrSessionChanged rechaza resultados de tareas en segundo plano lanzadas
// para una sesion que ya no es la actual.
var ErrSessionChanged = errors.New("session changed")

// Reconciler sincroniza un cache del rol contra el backend. Toda escritura
// debe pasar por commit.
type Reconciler interface {
	SyncWithBackend(ctx context.Context, commit func(apply func() error) error) error
}

// Snapshot es una copia inmutable del estado expuesto a la UI.
type Snapshot struct {
	State   State
	Session domain.Session
	Pending *domain.PendingVerification
	Err     string
}

type Option func(*Manager)

func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) { m.requestTimeout = d }
}

func WithReconcileTimeout(d time.Duration) Option {
	return func(m *Manager) { m.reconcileTimeout = d }
}

// WithStorageSchema activa el reseteo unico del almacenamiento al restaurar.
func WithStorageSchema(schema string) Option {
	return func(m *Manager) { m.storageSchema = schema }
}

func WithRefreshOnRestore(enabled bool) Option {
	return func(m *Manager) { m.refreshOnRestore = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager es la unica fuente de verdad de la sesion en memoria. Asume a lo
// sumo una operacion mutante en curso; no encola ni excluye llamadas.
type Manager struct {
	logger     *zap.Logger
	records    *store.SessionRecords
	api        authapi.Client
	reconciler Reconciler

	requestTimeout   time.Duration
	reconcileTimeout time.Duration
	storageSchema    string
	refreshOnRestore bool
	now              func() time.Time

	// commitMu ordena los cambios de identidad frente a los commits en segundo plano.
	commitMu sync.Mutex

	mu         sync.RWMutex
	state      State
	session    domain.Session
	pending    *domain.PendingVerification
	lastErr    string
	generation string
	subs       map[int]func(Snapshot)
	nextSub    int

	bg sync.WaitGroup
}

func NewManager(logger *zap.Logger, records *store.SessionRecords, api authapi.Client, reconciler Reconciler, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger:           logger,
		records:          records,
		api:              api,
		reconciler:       reconciler,
		requestTimeout:   defaultRequestTimeout,
		reconcileTimeout: defaultReconcileTimeout,
		refreshOnRestore: true,
		now:              func() time.Time { return time.Now().UTC() },
		state:            StateBootstrapping,
		generation:       uuid.NewString(),
		subs:             make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   m.state,
		Session: m.session,
		Err:     m.lastErr,
	}
	if m.pending != nil {
		p := *m.pending
		snap.Pending = &p
	}
	return snap
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) ClearError() {
	m.update(func() { m.lastErr = "" })
}

func (m *Manager) PendingVerification() *domain.PendingVerification {
	return m.Snapshot().Pending
}

// Generation identifica la sesion adoptada; cambia en cada login, registro o logout.
func (m *Manager) Generation() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Subscribe registra un observador; recibe el snapshot tras cada cambio.
// El observador no debe invocar operaciones del Manager de forma sincronica.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Wait bloquea hasta que terminen las tareas en segundo plano.
func (m *Manager) Wait() {
	m.bg.Wait()
}

func (m *Manager) update(fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()
	for _, s := range subs {
		s(snap)
	}
}

func (m *Manager) fail(msg string) {
	m.update(func() { m.lastErr = msg })
}

func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.requestTimeout)
}

// adopt reemplaza la sesion en memoria y devuelve la nueva generacion.
// Requiere commitMu.
func (m *Manager) adopt(s domain.Session) string {
	gen := uuid.NewString()
	m.update(func() {
		m.session = s
		m.state = StateAuthenticated
		m.generation = gen
		m.lastErr = ""
	})
	return gen
}

func messageOr(msg, fallback string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}
