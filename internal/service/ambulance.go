package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository"
)

// defaultNearestRadiusKm bounds the geo search when the caller gives none.
const defaultNearestRadiusKm = 10.0

// AmbulanceService manages the ambulance fleet registry and proximity
// lookups. Positions are held twice: the database row is durable truth, the
// Redis geo index serves nearest-ambulance queries.
type AmbulanceService struct {
	ambulanceRepo repository.AmbulanceRepository
	locations     internalRedis.LocationStoreInterface
	now           func() time.Time
}

// NewAmbulanceService creates a new AmbulanceService.
func NewAmbulanceService(ambulanceRepo repository.AmbulanceRepository, locations internalRedis.LocationStoreInterface) *AmbulanceService {
	return &AmbulanceService{
		ambulanceRepo: ambulanceRepo,
		locations:     locations,
		now:           time.Now,
	}
}

// RegisterAmbulanceRequest contains the parameters for fleet registration.
type RegisterAmbulanceRequest struct {
	DriverID    string
	PlateNumber string
	Lat         float64
	Lng         float64
}

// Register adds an ambulance to the fleet. The plate number must be unique.
// A starting position, when given, seeds both the row and the geo index.
func (s *AmbulanceService) Register(ctx context.Context, req RegisterAmbulanceRequest) (*domain.Ambulance, error) {
	if req.PlateNumber == "" {
		return nil, ErrInvalidPlateNumber
	}

	now := s.now()
	ambulance := &domain.Ambulance{
		ID:          uuid.New().String(),
		DriverID:    req.DriverID,
		PlateNumber: req.PlateNumber,
		Status:      domain.AmbulanceStatusAvailable,
		CurrentLat:  req.Lat,
		CurrentLng:  req.Lng,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.ambulanceRepo.Create(ctx, ambulance); err != nil {
		return nil, err
	}

	if req.Lat != 0 || req.Lng != 0 {
		if err := s.locations.UpdateLocation(ctx, ambulance.ID, req.Lat, req.Lng); err != nil {
			return nil, err
		}
	}

	return ambulance, nil
}

// Get retrieves an ambulance by ID.
func (s *AmbulanceService) Get(ctx context.Context, id string) (*domain.Ambulance, error) {
	if id == "" {
		return nil, ErrInvalidAmbulanceID
	}
	return s.ambulanceRepo.GetByID(ctx, id)
}

// List returns the whole fleet.
func (s *AmbulanceService) List(ctx context.Context) ([]*domain.Ambulance, error) {
	return s.ambulanceRepo.GetAll(ctx)
}

// UpdateStatus sets an ambulance's availability. Going offline also removes
// it from the geo index so it stops matching proximity queries.
func (s *AmbulanceService) UpdateStatus(ctx context.Context, id string, status domain.AmbulanceStatus) (*domain.Ambulance, error) {
	if id == "" {
		return nil, ErrInvalidAmbulanceID
	}
	if !domain.ValidAmbulanceStatus(status) {
		return nil, ErrInvalidAmbulanceStatus
	}

	if err := s.ambulanceRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	if status == domain.AmbulanceStatusOffline {
		if err := s.locations.RemoveLocation(ctx, id); err != nil {
			return nil, err
		}
	}

	return s.ambulanceRepo.GetByID(ctx, id)
}

// RecordLocation persists a position report to the database row and mirrors
// it into the geo index. The row write happens first; an index failure after
// a successful row write is returned to the caller.
func (s *AmbulanceService) RecordLocation(ctx context.Context, id string, lat, lng float64) error {
	if id == "" {
		return ErrInvalidAmbulanceID
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}

	if err := s.ambulanceRepo.UpdateLocation(ctx, id, lat, lng); err != nil {
		return err
	}
	return s.locations.UpdateLocation(ctx, id, lat, lng)
}

// NearbyAmbulance is an ambulance enriched with its distance from the query
// point.
type NearbyAmbulance struct {
	Ambulance  *domain.Ambulance `json:"ambulance"`
	DistanceKm float64           `json:"distanceKm"`
}

// Nearest returns available ambulances within radiusKm of the point, nearest
// first. Ambulances present in the geo index but busy or offline in the
// registry are filtered out.
func (s *AmbulanceService) Nearest(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyAmbulance, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = defaultNearestRadiusKm
	}

	locations, err := s.locations.FindNearby(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyAmbulance, 0, len(locations))
	for _, loc := range locations {
		ambulance, err := s.ambulanceRepo.GetByID(ctx, loc.AmbulanceID)
		if err != nil {
			// Index entries can outlive deleted rows; skip strays.
			continue
		}
		if ambulance.Status != domain.AmbulanceStatusAvailable {
			continue
		}
		nearby = append(nearby, NearbyAmbulance{Ambulance: ambulance, DistanceKm: loc.DistanceKm})
	}

	return nearby, nil
}
