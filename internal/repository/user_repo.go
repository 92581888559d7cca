package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"royal-villa/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
// Las busquedas por email son case-insensitive; GetByEmail devuelve
// pgx.ErrNoRows cuando no existe el usuario.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string, updatedAt time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, name, password_hash, role, created_date, updated_date
		FROM users
		WHERE lower(email) = lower($1)
	`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedDate,
		&u.UpdatedDate,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Create inserta el usuario y asigna el ID generado por la base.
func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (email, name, password_hash, role, created_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.CreatedDate,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PgUserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_date = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, hash, updatedAt)
	return err
}
