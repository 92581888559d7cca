package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"royal-villa/internal/domain"
)

// VillaRepository define el contrato de persistencia para villas.
type VillaRepository interface {
	List(ctx context.Context) ([]domain.Villa, error)
	GetByID(ctx context.Context, id int64) (domain.Villa, error)
	GetByName(ctx context.Context, name string) (domain.Villa, error)
	Create(ctx context.Context, villa *domain.Villa) error
	Update(ctx context.Context, villa domain.Villa) error
	Delete(ctx context.Context, id int64) error
}

// PgVillaRepository implementa VillaRepository usando pgxpool.
type PgVillaRepository struct {
	pool *pgxpool.Pool
}

func NewPgVillaRepository(pool *pgxpool.Pool) *PgVillaRepository {
	return &PgVillaRepository{pool: pool}
}

const villaColumns = `id, name, details, rate, sqft, occupancy, image_url, created_date, updated_date`

func scanVilla(row pgx.Row) (domain.Villa, error) {
	var v domain.Villa
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Details,
		&v.Rate,
		&v.Sqft,
		&v.Occupancy,
		&v.ImageURL,
		&v.CreatedDate,
		&v.UpdatedDate,
	)
	return v, err
}

func (r *PgVillaRepository) List(ctx context.Context) ([]domain.Villa, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+villaColumns+` FROM villas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	villas := make([]domain.Villa, 0)
	for rows.Next() {
		v, err := scanVilla(rows)
		if err != nil {
			return nil, err
		}
		villas = append(villas, v)
	}
	return villas, rows.Err()
}

func (r *PgVillaRepository) GetByID(ctx context.Context, id int64) (domain.Villa, error) {
	return scanVilla(r.pool.QueryRow(ctx, `SELECT `+villaColumns+` FROM villas WHERE id = $1`, id))
}

func (r *PgVillaRepository) GetByName(ctx context.Context, name string) (domain.Villa, error) {
	return scanVilla(r.pool.QueryRow(ctx, `SELECT `+villaColumns+` FROM villas WHERE lower(name) = lower($1)`, name))
}

func (r *PgVillaRepository) Create(ctx context.Context, villa *domain.Villa) error {
	const query = `
		INSERT INTO villas (name, details, rate, sqft, occupancy, image_url, created_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		villa.Name,
		villa.Details,
		villa.Rate,
		villa.Sqft,
		villa.Occupancy,
		villa.ImageURL,
		villa.CreatedDate,
	).Scan(&villa.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// Update devuelve pgx.ErrNoRows si la villa ya no existe.
func (r *PgVillaRepository) Update(ctx context.Context, villa domain.Villa) error {
	const query = `
		UPDATE villas
		SET name = $2, details = $3, rate = $4, sqft = $5, occupancy = $6, image_url = $7, updated_date = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		villa.ID,
		villa.Name,
		villa.Details,
		villa.Rate,
		villa.Sqft,
		villa.Occupancy,
		villa.ImageURL,
		villa.UpdatedDate,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgVillaRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM villas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
