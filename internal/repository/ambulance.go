package repository

import (
	"context"

	"dispatch/internal/domain"
)

// AmbulanceRepository defines the persistence operations for ambulances.
type AmbulanceRepository interface {
	// Create persists a new ambulance. Returns ErrDuplicate when the plate
	// number is already registered.
	Create(ctx context.Context, ambulance *domain.Ambulance) error

	// GetByID retrieves an ambulance by ID.
	GetByID(ctx context.Context, id string) (*domain.Ambulance, error)

	// GetByPlate retrieves an ambulance by exact plate number.
	GetByPlate(ctx context.Context, plate string) (*domain.Ambulance, error)

	// FindByPlateLike retrieves the first ambulance whose plate contains
	// the fragment, case-insensitively.
	FindByPlateLike(ctx context.Context, fragment string) (*domain.Ambulance, error)

	// GetAll retrieves all ambulances.
	GetAll(ctx context.Context) ([]*domain.Ambulance, error)

	// UpdateStatus sets the ambulance status.
	UpdateStatus(ctx context.Context, id string, status domain.AmbulanceStatus) error

	// UpdateLocation stores the latest reported position.
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}
