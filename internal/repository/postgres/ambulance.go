package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

const ambulanceColumns = `id, driver_id, plate_number, status, current_lat, current_lng, created_at, updated_at`

// AmbulanceRepository is a PostgreSQL implementation of repository.AmbulanceRepository.
type AmbulanceRepository struct {
	q Querier
}

// NewAmbulanceRepository creates a new PostgreSQL ambulance repository.
func NewAmbulanceRepository(db *sql.DB) *AmbulanceRepository {
	return &AmbulanceRepository{q: db}
}

// Create persists a new ambulance. The plate number carries a UNIQUE
// constraint; violation maps to ErrDuplicate.
func (r *AmbulanceRepository) Create(ctx context.Context, a *domain.Ambulance) error {
	query := `
		INSERT INTO ambulances (` + ambulanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		a.ID,
		nullString(a.DriverID),
		a.PlateNumber,
		a.Status,
		a.CurrentLat,
		a.CurrentLng,
		a.CreatedAt,
		a.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}

func scanAmbulance(row rowScanner) (*domain.Ambulance, error) {
	var a domain.Ambulance
	var driverID sql.NullString

	err := row.Scan(
		&a.ID,
		&driverID,
		&a.PlateNumber,
		&a.Status,
		&a.CurrentLat,
		&a.CurrentLng,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.DriverID = driverID.String
	return &a, nil
}

// GetByID retrieves an ambulance by ID.
func (r *AmbulanceRepository) GetByID(ctx context.Context, id string) (*domain.Ambulance, error) {
	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE id = $1`

	a, err := scanAmbulance(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByPlate retrieves an ambulance by exact plate number.
func (r *AmbulanceRepository) GetByPlate(ctx context.Context, plate string) (*domain.Ambulance, error) {
	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE plate_number = $1`

	a, err := scanAmbulance(r.q.QueryRowContext(ctx, query, plate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// FindByPlateLike retrieves the first ambulance whose plate contains the
// fragment, case-insensitively.
func (r *AmbulanceRepository) FindByPlateLike(ctx context.Context, fragment string) (*domain.Ambulance, error) {
	query := `SELECT ` + ambulanceColumns + ` FROM ambulances WHERE plate_number ILIKE '%' || $1 || '%' LIMIT 1`

	a, err := scanAmbulance(r.q.QueryRowContext(ctx, query, fragment))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetAll retrieves all ambulances.
func (r *AmbulanceRepository) GetAll(ctx context.Context) ([]*domain.Ambulance, error) {
	query := `SELECT ` + ambulanceColumns + ` FROM ambulances ORDER BY plate_number`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ambulances []*domain.Ambulance
	for rows.Next() {
		a, err := scanAmbulance(rows)
		if err != nil {
			return nil, err
		}
		ambulances = append(ambulances, a)
	}
	return ambulances, rows.Err()
}

// UpdateStatus sets the ambulance status.
func (r *AmbulanceRepository) UpdateStatus(ctx context.Context, id string, status domain.AmbulanceStatus) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE ambulances SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateLocation stores the latest reported position. The single UPDATE is
// the unit of atomicity; concurrent writers are last-write-wins.
func (r *AmbulanceRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE ambulances SET current_lat = $1, current_lng = $2, updated_at = NOW() WHERE id = $3`,
		lat, lng, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
