package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"royal-villa/internal/domain"
)

// AmenityRepository define el contrato de persistencia para amenities de villas.
// Los nombres son unicos por villa.
type AmenityRepository interface {
	List(ctx context.Context) ([]domain.VillaAmenity, error)
	GetByID(ctx context.Context, id int64) (domain.VillaAmenity, error)
	GetByName(ctx context.Context, villaID int64, name string) (domain.VillaAmenity, error)
	Create(ctx context.Context, amenity *domain.VillaAmenity) error
	Update(ctx context.Context, amenity domain.VillaAmenity) error
	Delete(ctx context.Context, id int64) error
}

// PgAmenityRepository implementa AmenityRepository usando pgxpool.
type PgAmenityRepository struct {
	pool *pgxpool.Pool
}

func NewPgAmenityRepository(pool *pgxpool.Pool) *PgAmenityRepository {
	return &PgAmenityRepository{pool: pool}
}

const amenityColumns = `id, villa_id, name, description, created_date, updated_date`

func scanAmenity(row pgx.Row) (domain.VillaAmenity, error) {
	var a domain.VillaAmenity
	err := row.Scan(&a.ID, &a.VillaID, &a.Name, &a.Description, &a.CreatedDate, &a.UpdatedDate)
	return a, err
}

func (r *PgAmenityRepository) List(ctx context.Context) ([]domain.VillaAmenity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+amenityColumns+` FROM villa_amenities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	amenities := make([]domain.VillaAmenity, 0)
	for rows.Next() {
		a, err := scanAmenity(rows)
		if err != nil {
			return nil, err
		}
		amenities = append(amenities, a)
	}
	return amenities, rows.Err()
}

func (r *PgAmenityRepository) GetByID(ctx context.Context, id int64) (domain.VillaAmenity, error) {
	return scanAmenity(r.pool.QueryRow(ctx, `SELECT `+amenityColumns+` FROM villa_amenities WHERE id = $1`, id))
}

func (r *PgAmenityRepository) GetByName(ctx context.Context, villaID int64, name string) (domain.VillaAmenity, error) {
	const query = `SELECT ` + amenityColumns + ` FROM villa_amenities WHERE villa_id = $1 AND lower(name) = lower($2)`
	return scanAmenity(r.pool.QueryRow(ctx, query, villaID, name))
}

func (r *PgAmenityRepository) Create(ctx context.Context, amenity *domain.VillaAmenity) error {
	const query = `
		INSERT INTO villa_amenities (villa_id, name, description, created_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		amenity.VillaID,
		amenity.Name,
		amenity.Description,
		amenity.CreatedDate,
	).Scan(&amenity.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *PgAmenityRepository) Update(ctx context.Context, amenity domain.VillaAmenity) error {
	const query = `
		UPDATE villa_amenities
		SET villa_id = $2, name = $3, description = $4, updated_date = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		amenity.ID,
		amenity.VillaID,
		amenity.Name,
		amenity.Description,
		amenity.UpdatedDate,
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

func (r *PgAmenityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM villa_amenities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
