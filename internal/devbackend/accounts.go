package devbackend

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kesnek-mobile/internal/domain"
)

type Account struct {
	Profile      domain.UserProfile
	Role         domain.Role
	PasswordHash string
	Employee     *domain.EmployeeProfile
	Employer     *domain.EmployerProfile
	Verified     bool
	SavedJobs    []domain.SavedJob
}

type pendingCode struct {
	accountID string
	codeHash  string
	expiresAt time.Time
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrNotVerified        = errors.New("email not verified")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrAccountNotFound    = errors.New("account not found")
	ErrRateLimited        = errors.New("too many attempts")
)

const otpTTL = 10 * time.Minute

// AccountService guarda cuentas en memoria y aplica las reglas de alta.
type AccountService struct {
	logger              *zap.Logger
	sender              CodeSender
	requireVerification bool
	limiter             RateLimiter

	mu      sync.Mutex
	byID    map[string]*Account
	byEmail map[string]string
	tickets map[string]pendingCode
}

type AccountOption func(*AccountService)

// WithRateLimiter reemplaza el limitador en memoria por defecto.
func WithRateLimiter(l RateLimiter) AccountOption {
	return func(s *AccountService) {
		if l != nil {
			s.limiter = l
		}
	}
}

func NewAccountService(logger *zap.Logger, sender CodeSender, requireVerification bool, opts ...AccountOption) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	s := &AccountService{
		logger:              logger,
		sender:              sender,
		requireVerification: requireVerification,
		limiter:             NewMemoryRateLimiter(otpTTL, 5),
		byID:                make(map[string]*Account),
		byEmail:             make(map[string]string),
		tickets:             make(map[string]pendingCode),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Role     domain.Role
	Email    string
	Password string
	Profile  domain.UserProfile
	Employee *domain.EmployeeProfile
	Employer *domain.EmployerProfile
}

// Register crea la cuenta. Con verificacion activa devuelve un ticket de un
// solo uso y envia el codigo; la cuenta no puede loguearse hasta verificar.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (Account, string, time.Time, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, "", time.Time{}, ErrInvalidEmail
	}
	if strings.TrimSpace(in.Password) == "" {
		return Account{}, "", time.Time{}, ErrInvalidCredentials
	}
	if !s.limiter.Allow("register:" + email) {
		return Account{}, "", time.Time{}, ErrRateLimited
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, "", time.Time{}, err
	}

	s.mu.Lock()
	if _, taken := s.byEmail[email]; taken {
		s.mu.Unlock()
		return Account{}, "", time.Time{}, ErrEmailTaken
	}
	profile := in.Profile
	profile.ID = uuid.NewString()
	profile.Email = email
	acc := &Account{
		Profile:      profile,
		Role:         in.Role,
		PasswordHash: string(hash),
		Employee:     in.Employee,
		Employer:     in.Employer,
		Verified:     !s.requireVerification,
	}
	s.byID[profile.ID] = acc
	s.byEmail[email] = profile.ID
	s.mu.Unlock()

	if !s.requireVerification {
		return *acc, "", time.Time{}, nil
	}

	code, codeHash, expiresAt, err := generateOTP()
	if err != nil {
		return Account{}, "", time.Time{}, err
	}
	ticket := uuid.NewString()
	s.mu.Lock()
	s.tickets[ticket] = pendingCode{accountID: profile.ID, codeHash: codeHash, expiresAt: expiresAt}
	s.mu.Unlock()

	if err := s.sender.SendVerificationOTP(ctx, email, code, expiresAt); err != nil {
		s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", email))
	}
	return *acc, ticket, expiresAt, nil
}

func (s *AccountService) Authenticate(emailAddr, password string, role domain.Role) (Account, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(password) == "" {
		return Account{}, ErrInvalidCredentials
	}
	s.mu.Lock()
	id, ok := s.byEmail[emailAddr]
	var acc Account
	if ok {
		acc = *s.byID[id]
	}
	s.mu.Unlock()
	if !ok || acc.Role != role {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acc.Verified {
		return Account{}, ErrNotVerified
	}
	return acc, nil
}

// Verify canjea ticket y codigo. Un codigo incorrecto no consume el ticket.
func (s *AccountService) Verify(ticket, code string) (Account, error) {
	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return Account{}, ErrOTPInvalid
	}
	if !s.limiter.Allow("verify:" + ticket) {
		return Account{}, ErrRateLimited
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.tickets[ticket]
	if !ok {
		return Account{}, ErrOTPInvalid
	}
	if time.Now().UTC().After(pending.expiresAt) {
		delete(s.tickets, ticket)
		return Account{}, ErrOTPExpired
	}
	if !verifyOTP(code, pending.codeHash) {
		return Account{}, ErrOTPInvalid
	}
	delete(s.tickets, ticket)
	acc, ok := s.byID[pending.accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	acc.Verified = true
	return *acc, nil
}

func (s *AccountService) Get(id string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// SaveJob agrega un empleo guardado a la cuenta de un empleado.
func (s *AccountService) SaveJob(id string, job domain.SavedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.SavedAt.IsZero() {
		job.SavedAt = time.Now().UTC()
	}
	acc.SavedJobs = append(acc.SavedJobs, job)
	return nil
}

func generateOTP() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(otpTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	hashBytes := sha256.Sum256([]byte(parts[0] + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(parts[1])) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
