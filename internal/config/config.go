package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v10"
)

// JwtSettings agrupa la seccion de firma de tokens.
type JwtSettings struct {
	Secret   string        `env:"SECRET,required,notEmpty"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
}

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev        bool   `env:"LOG_DEV" envDefault:"false"`

	// LoginFailureUnauthorized cambia el status de credenciales invalidas de 400 a 401.
	LoginFailureUnauthorized bool          `env:"AUTH_LOGIN_FAILURE_UNAUTHORIZED" envDefault:"false"`
	LoginMaxAttempts         int           `env:"AUTH_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginAttemptWindow       time.Duration `env:"AUTH_LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`
	// AllowAdminRegistration deja pedir el rol Admin en /api/auth/register.
	AllowAdminRegistration   bool          `env:"AUTH_ALLOW_ADMIN_REGISTRATION" envDefault:"true"`

	Argon2MemoryKiB uint32 `env:"PASSWORD_ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Time      uint32 `env:"PASSWORD_ARGON2_TIME" envDefault:"1"`
	Argon2Threads   uint8  `env:"PASSWORD_ARGON2_THREADS" envDefault:"4"`

	JwtSettings JwtSettings `envPrefix:"JWTSETTINGS_"`
}

var ErrInvalidTokenTTL = errors.New("JWTSETTINGS_TOKEN_TTL must be positive")

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.JwtSettings.TokenTTL <= 0 {
		return nil, ErrInvalidTokenTTL
	}
	return &cfg, nil
}
