package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"royal-villa/internal/config"
	"royal-villa/internal/db"
	apihttp "royal-villa/internal/http"
	"royal-villa/internal/logger"
	"royal-villa/internal/repository"
	"royal-villa/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	signer, err := service.NewTokenSigner(cfg.JwtSettings.Secret, cfg.JwtSettings.TokenTTL)
	if err != nil {
		lg.Fatal("token signer", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		lg.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	villaRepo := repository.NewPgVillaRepository(pool)
	amenityRepo := repository.NewPgAmenityRepository(pool)

	var (
		locker      service.RegistrationLocker
		limiter     = service.NewLoginLimiter(cfg.LoginAttemptWindow, cfg.LoginMaxAttempts)
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			lg.Warn("redis ping failed, using in-process lock and limiter", zap.Error(err))
		} else {
			locker = service.NewRedisRegistrationLocker(redisClient)
			limiter = service.NewRedisLoginLimiter(redisClient, cfg.LoginAttemptWindow, cfg.LoginMaxAttempts)
		}
		cancel()
	}

	hasher := service.NewArgon2Hasher(service.Argon2Params{
		Memory:  cfg.Argon2MemoryKiB,
		Time:    cfg.Argon2Time,
		Threads: cfg.Argon2Threads,
	})
	authSvc := service.NewAuthService(lg, userRepo, hasher, signer, locker, limiter)
	authSvc.SetAdminRegistration(cfg.AllowAdminRegistration)

	router := apihttp.NewRouter(
		lg,
		signer,
		apihttp.NewAuthHandler(lg, authSvc, cfg.LoginFailureUnauthorized),
		apihttp.NewVillaHandler(lg, villaRepo),
		apihttp.NewAmenityHandler(lg, amenityRepo, villaRepo),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lg.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
