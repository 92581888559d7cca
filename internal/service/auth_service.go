package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"royal-villa/internal/domain"
	"royal-villa/internal/repository"
)

var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRegistration = errors.New("invalid registration data")
	ErrTooManyAttempts     = errors.New("too many login attempts")
	// ErrAuthInternal agrupa cualquier falla inesperada (store, hasher, firma).
	ErrAuthInternal = errors.New("auth internal error")
)

const defaultLockWait = 5 * time.Second

// AuthService coordina registro y login. La unicidad de email se garantiza
// con el lock por email y, como ultima barrera, con el indice unico del store.
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	hasher   PasswordHasher
	signer   *TokenSigner
	locker   RegistrationLocker
	limiter  LoginLimiter
	lockWait time.Duration
	now      func() time.Time

	// allowAdminSignup permite pedir el rol Admin en el registro publico.
	allowAdminSignup bool

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher, signer *TokenSigner, locker RegistrationLocker, limiter LoginLimiter) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewArgon2Hasher(DefaultArgon2Params)
	}
	if locker == nil {
		locker = NewMemoryRegistrationLocker()
	}
	return &AuthService{
		logger:   logger,
		users:    users,
		hasher:   hasher,
		signer:   signer,
		locker:   locker,
		limiter:  limiter,
		lockWait: defaultLockWait,
		now:      func() time.Time { return time.Now().UTC() },

		allowAdminSignup: true,
	}
}

// SetAdminRegistration habilita o bloquea el rol Admin en Register.
func (s *AuthService) SetAdminRegistration(allow bool) {
	s.allowAdminSignup = allow
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAuthInternal, op, err)
}

// EmailExists consulta el store sin distinguir mayusculas.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	if s.users == nil {
		return false, internalErr("email exists", errors.New("auth service not configured"))
	}
	exists, err := s.users.ExistsByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, internalErr("email exists", err)
	}
	return exists, nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, internalErr("register", errors.New("auth service not configured"))
	}

	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || input.Password == "" {
		return domain.User{}, ErrInvalidRegistration
	}
	role, ok := normalizeRole(input.Role)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidRegistration, input.Role)
	}
	if role == domain.RoleAdmin && !s.allowAdminSignup {
		return domain.User{}, fmt.Errorf("%w: admin registration disabled", ErrInvalidRegistration)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, email)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return domain.User{}, internalErr("acquire registration lock", err)
		}
		// el indice unico sobre lower(email) sigue rechazando duplicados
		s.logger.Warn("registration lock unavailable, relying on store constraint", zap.Error(err))
	} else {
		defer unlock()
	}

	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, internalErr("hash password", err)
	}

	user := domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		CreatedDate:  s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, internalErr("create user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// Login devuelve ErrInvalidCredentials tanto para email inexistente como para
// contraseña incorrecta; ambos caminos ejecutan una verificacion de hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	if s.users == nil {
		return domain.LoginResult{}, internalErr("login", errors.New("auth service not configured"))
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.LoginResult{}, ErrInvalidCredentials
	}
	// solo cuentan los intentos fallidos; un login correcto limpia el contador
	if s.limiter != nil && !s.limiter.Allow(email) {
		return domain.LoginResult{}, ErrTooManyAttempts
	}

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		if s.limiter != nil && errors.Is(err, ErrInvalidCredentials) {
			s.limiter.RecordFailure(email)
		}
		return domain.LoginResult{}, err
	}
	if s.limiter != nil {
		s.limiter.Reset(email)
	}

	token, err := s.signer.Issue(user)
	if err != nil {
		return domain.LoginResult{}, internalErr("issue token", err)
	}
	return domain.LoginResult{User: user.DTO(), Token: token}, nil
}

// authenticate verifica credenciales y aplica el rehash pendiente.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.verifyDummy(password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, internalErr("lookup user", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		if errors.Is(err, ErrUnknownHashFormat) {
			s.logger.Warn("stored password hash has unknown format", zap.Int64("user_id", user.ID))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, internalErr("verify password", err)
	}
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

func (s *AuthService) rehash(ctx context.Context, user domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash, s.now()); err != nil {
		s.logger.Warn("password rehash not stored", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}
	s.logger.Info("password hash upgraded", zap.Int64("user_id", user.ID))
}

// verifyDummy iguala el costo de login para emails inexistentes.
func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		hash, err := s.hasher.Hash(base64.RawStdEncoding.EncodeToString(buf))
		if err != nil {
			s.logger.Warn("dummy hash generation failed", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

func normalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", "customer":
		return domain.RoleCustomer, true
	case "admin":
		return domain.RoleAdmin, true
	default:
		return "", false
	}
}
