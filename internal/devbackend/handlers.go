package devbackend

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

// AuthHandler implementa el contrato REST que consume el cliente movil.
type AuthHandler struct {
	logger   *zap.Logger
	accounts *AccountService
	jwt      *JWTService
	// OmitUser simula un backend que no devuelve user en respuestas exitosas.
	OmitUser bool
}

func NewAuthHandler(logger *zap.Logger, accounts *AccountService, jwtSvc *JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		accounts: accounts,
		jwt:      jwtSvc,
	}
}

func reject(c *gin.Context, status int, msg string) {
	c.JSON(status, domain.AuthResponse{Flag: false, Message: msg})
}

// LoginEmployee maneja POST /employees/login.
func (h *AuthHandler) LoginEmployee(c *gin.Context) {
	h.login(c, domain.RoleEmployee)
}

// LoginEmployer maneja POST /employers/login.
func (h *AuthHandler) LoginEmployer(c *gin.Context) {
	h.login(c, domain.RoleEmployer)
}

func (h *AuthHandler) login(c *gin.Context, role domain.Role) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		reject(c, http.StatusBadRequest, "invalid request")
		return
	}
	acc, err := h.accounts.Authenticate(req.Email, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotVerified):
			reject(c, http.StatusForbidden, "Please verify your email first.")
		case errors.Is(err, ErrInvalidCredentials):
			reject(c, http.StatusUnauthorized, "Invalid email or password.")
		default:
			h.logger.Error("login failed", zap.Error(err))
			reject(c, http.StatusInternalServerError, "could not login")
		}
		return
	}
	h.issueSession(c, http.StatusOK, "Login successful.", acc)
}

// RegisterEmployee maneja POST /employees/register.
func (h *AuthHandler) RegisterEmployee(c *gin.Context) {
	var req domain.RegisterEmployeeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "invalid request")
		return
	}
	h.register(c, RegisterInput{
		Role:     domain.RoleEmployee,
		Email:    req.Email,
		Password: req.Password,
		Profile:  domain.UserProfile{DisplayName: req.FullName, PhoneNumber: req.PhoneNumber, Location: req.Location},
		Employee: &domain.EmployeeProfile{Preferences: req.Preferences, JobAlerts: true, MessageNotifications: true},
	})
}

// RegisterEmployer maneja POST /employers/register.
func (h *AuthHandler) RegisterEmployer(c *gin.Context) {
	var req domain.RegisterEmployerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CompanyName == "" {
		reject(c, http.StatusBadRequest, "Company name is required.")
		return
	}
	h.register(c, RegisterInput{
		Role:     domain.RoleEmployer,
		Email:    req.Email,
		Password: req.Password,
		Profile:  domain.UserProfile{DisplayName: req.FullName, PhoneNumber: req.PhoneNumber, Location: req.Location},
		Employer: &domain.EmployerProfile{
			CompanyName:              req.CompanyName,
			Description:              req.Description,
			Industry:                 req.Industry,
			Size:                     req.Size,
			MessageNotifications:     true,
			ApplicationNotifications: true,
		},
	})
}

func (h *AuthHandler) register(c *gin.Context, in RegisterInput) {
	acc, ticket, expiresAt, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			reject(c, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		case errors.Is(err, ErrEmailTaken):
			reject(c, http.StatusConflict, "This email is already registered.")
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidCredentials):
			reject(c, http.StatusBadRequest, "Email and password are required.")
		default:
			h.logger.Error("register failed", zap.Error(err))
			reject(c, http.StatusInternalServerError, "could not register")
		}
		return
	}
	if ticket != "" {
		c.JSON(http.StatusCreated, domain.AuthResponse{
			Flag:               true,
			Message:            "Verification code sent.",
			VerificationTicket: ticket,
			TicketExpiresAt:    &expiresAt,
		})
		return
	}
	h.issueSession(c, http.StatusCreated, "Registration successful.", acc)
}

// VerifyEmail maneja POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Ticket string `json:"ticket" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "invalid request")
		return
	}
	acc, err := h.accounts.Verify(req.Ticket, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			reject(c, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		case errors.Is(err, ErrOTPExpired):
			reject(c, http.StatusGone, "Verification code expired.")
		case errors.Is(err, ErrOTPInvalid):
			reject(c, http.StatusBadRequest, "Invalid verification code.")
		default:
			h.logger.Error("verify failed", zap.Error(err))
			reject(c, http.StatusInternalServerError, "could not verify")
		}
		return
	}
	h.issueSession(c, http.StatusOK, "Email verified.", acc)
}

// RefreshToken maneja POST /auth/refresh-token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "invalid request")
		return
	}
	pair, err := h.jwt.RefreshPair(c.Request.Context(), req.RefreshToken, h.accounts.Get)
	if err != nil {
		if errors.Is(err, ErrTokenStore) {
			h.logger.Error("refresh token store failed", zap.Error(err))
			reject(c, http.StatusInternalServerError, "could not refresh session")
			return
		}
		reject(c, http.StatusUnauthorized, "Refresh token is invalid or expired.")
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponse{
		Flag:         true,
		Message:      "Token refreshed.",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// SavedJobs maneja GET /employees/saved-jobs; requiere JWTAuthMiddleware.
func (h *AuthHandler) SavedJobs(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.Role != domain.RoleEmployee {
		c.JSON(http.StatusForbidden, domain.SavedJobsResponse{Flag: false, Message: "employees only"})
		return
	}
	acc, found := h.accounts.Get(claims.UserID)
	if !found {
		c.JSON(http.StatusNotFound, domain.SavedJobsResponse{Flag: false, Message: "account not found"})
		return
	}
	jobs := acc.SavedJobs
	if jobs == nil {
		jobs = []domain.SavedJob{}
	}
	c.JSON(http.StatusOK, domain.SavedJobsResponse{Flag: true, Message: "ok", Data: jobs})
}

func (h *AuthHandler) issueSession(c *gin.Context, status int, msg string, acc Account) {
	pair, err := h.jwt.GeneratePair(c.Request.Context(), acc)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		reject(c, http.StatusInternalServerError, "could not issue tokens")
		return
	}
	resp := domain.AuthResponse{
		Flag:         true,
		Message:      msg,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		EmployeeData: acc.Employee,
		EmployerData: acc.Employer,
	}
	if !h.OmitUser {
		profile := acc.Profile
		resp.User = &profile
	}
	c.JSON(status, resp)
}
