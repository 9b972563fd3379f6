package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del cliente y del backend de desarrollo.
type Config struct {
	APIBaseURL       string        `env:"KESNEK_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	StoreBackend     string        `env:"KESNEK_STORE_BACKEND" envDefault:"file"`
	StoreDir         string        `env:"KESNEK_STORE_DIR" envDefault:".kesnek"`
	InstallationID   string        `env:"KESNEK_INSTALLATION_ID"`
	RequestTimeout   time.Duration `env:"KESNEK_REQUEST_TIMEOUT" envDefault:"15s"`
	SyncTimeout      time.Duration `env:"KESNEK_SYNC_TIMEOUT" envDefault:"30s"`
	StorageSchema    string        `env:"KESNEK_STORAGE_SCHEMA" envDefault:"2"`
	RefreshOnRestore bool          `env:"KESNEK_REFRESH_ON_RESTORE" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	RequireVerification  bool   `env:"DEVBACKEND_REQUIRE_VERIFICATION" envDefault:"true"`
	OTPMaxAttempts       int    `env:"DEVBACKEND_OTP_MAX_ATTEMPTS" envDefault:"5"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Kesnek"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
