package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kesnek-mobile/internal/config"
	"kesnek-mobile/internal/devbackend"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var sender devbackend.CodeSender = devbackend.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		smtpSender, err := devbackend.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			sender = smtpSender
		}
	}

	var (
		limiter    devbackend.RateLimiter
		tokenStore devbackend.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = devbackend.NewRedisRateLimiter(redisClient, 10*time.Minute, cfg.OTPMaxAttempts)
			tokenStore = devbackend.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	if cfg.JWTSecret == "" {
		logger.Fatal("jwt secret not configured")
	}
	jwtSvc := devbackend.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	accounts := devbackend.NewAccountService(logger, sender, cfg.RequireVerification, devbackend.WithRateLimiter(limiter))
	authHandler := devbackend.NewAuthHandler(logger, accounts, jwtSvc)
	router := devbackend.NewRouter(logger, authHandler, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting dev backend",
		zap.String("port", cfg.HTTPPort),
		zap.Bool("require_verification", cfg.RequireVerification),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
