package devbackend

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kesnek-mobile/internal/domain"
)

const authClaimsKey = "auth_claims"

// NewRouter configura el router de Gin con middlewares y las rutas del contrato.
func NewRouter(logger *zap.Logger, authH *AuthHandler, jwtSvc *JWTService) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	api := r.Group("/api")
	api.POST("/employees/login", authH.LoginEmployee)
	api.POST("/employers/login", authH.LoginEmployer)
	api.POST("/employees/register", authH.RegisterEmployee)
	api.POST("/employers/register", authH.RegisterEmployer)
	api.POST("/auth/verify-email", authH.VerifyEmail)
	api.POST("/auth/refresh-token", authH.RefreshToken)
	api.GET("/employees/saved-jobs", JWTAuthMiddleware(jwtSvc), authH.SavedJobs)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// JWTAuthMiddleware valida JWT access tokens y guarda claims en el contexto.
func JWTAuthMiddleware(jwtSvc *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.AuthResponse{Flag: false, Message: "missing token"})
			return
		}
		claims, err := jwtSvc.ParseAccessToken(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, domain.AuthResponse{Flag: false, Message: "invalid token"})
			return
		}
		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := val.(Claims)
	return claims, ok
}
