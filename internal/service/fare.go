package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// Default fare parameters, overridable per calculation.
const (
	defaultBaseFare  = 150.0
	defaultPerKmRate = 25.0
)

// emergencyMultipliers maps emergency level to its fare multiplier.
var emergencyMultipliers = map[domain.EmergencyLevel]float64{
	domain.EmergencyLow:      1.0,
	domain.EmergencyMedium:   1.3,
	domain.EmergencyCritical: 1.7,
}

// round2 rounds to 2 decimal places, half away from zero (currency units).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FareOverrides replace individual default fare parameters. Nil fields keep
// the default.
type FareOverrides struct {
	BaseFare            *float64
	PerKmRate           *float64
	EmergencyMultiplier *float64
}

// FareInput is the full context of one fare calculation.
type FareInput struct {
	BookingID      string // empty for pure estimates
	CalculatedBy   string
	DistanceKm     float64
	EmergencyLevel domain.EmergencyLevel
	Overrides      FareOverrides
}

// FareResult is the computed estimate plus the breakdown used to derive it.
type FareResult struct {
	EstimatedFare float64
	Breakdown     domain.FareBreakdown
	HistoryID     string
}

// FareService computes fare estimates and maintains the append-only fare
// audit trail. Estimates must be reconstructable from history alone, so a
// history write failure fails the calculation.
type FareService struct {
	historyRepo repository.FareHistoryRepository
	now         func() time.Time
}

// NewFareService creates a new FareService.
func NewFareService(historyRepo repository.FareHistoryRepository) *FareService {
	return &FareService{historyRepo: historyRepo, now: time.Now}
}

// Compute calculates the estimated fare:
//
//	round2((baseFare + perKmRate*distanceKm) * multiplier)
//
// An emergency level missing from the multiplier table falls back to a
// multiplier of 1 rather than failing; callers that want strict validation
// check the level before calling. One history record is appended per
// invocation, including pure estimates.
func (s *FareService) Compute(ctx context.Context, in FareInput) (*FareResult, error) {
	if in.DistanceKm < 0 {
		in.DistanceKm = 0
	}

	baseFare := defaultBaseFare
	if in.Overrides.BaseFare != nil {
		baseFare = *in.Overrides.BaseFare
	}

	perKmRate := defaultPerKmRate
	if in.Overrides.PerKmRate != nil {
		perKmRate = *in.Overrides.PerKmRate
	}

	multiplier := 1.0
	if m, ok := emergencyMultipliers[in.EmergencyLevel]; ok {
		multiplier = m
	}
	if in.Overrides.EmergencyMultiplier != nil {
		multiplier = *in.Overrides.EmergencyMultiplier
	}

	estimated := round2((baseFare + perKmRate*in.DistanceKm) * multiplier)

	breakdown := domain.FareBreakdown{
		BaseFare:            baseFare,
		PerKmRate:           perKmRate,
		EmergencyMultiplier: multiplier,
	}

	history := &domain.FareHistory{
		ID:             uuid.New().String(),
		BookingID:      in.BookingID,
		CalculatedBy:   in.CalculatedBy,
		DistanceKm:     in.DistanceKm,
		EmergencyLevel: in.EmergencyLevel,
		Breakdown:      breakdown,
		EstimatedFare:  estimated,
		CreatedAt:      s.now(),
	}
	if err := s.historyRepo.Create(ctx, history); err != nil {
		return nil, err
	}

	return &FareResult{
		EstimatedFare: estimated,
		Breakdown:     breakdown,
		HistoryID:     history.ID,
	}, nil
}

// RecordOverride appends an audit record for an admin final-fare override.
func (s *FareService) RecordOverride(ctx context.Context, booking *domain.Booking, finalFare float64, reason, by string) error {
	history := &domain.FareHistory{
		ID:             uuid.New().String(),
		BookingID:      booking.ID,
		CalculatedBy:   by,
		DistanceKm:     booking.DistanceKm,
		EmergencyLevel: booking.EmergencyLevel,
		Breakdown:      booking.FareBreakdown,
		EstimatedFare:  booking.EstimatedFare,
		FinalFare:      finalFare,
		OverrideReason: reason,
		CreatedAt:      s.now(),
	}
	return s.historyRepo.Create(ctx, history)
}

// History returns all fare audit records for a booking, oldest first.
func (s *FareService) History(ctx context.Context, bookingID string) ([]*domain.FareHistory, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.historyRepo.GetByBookingID(ctx, bookingID)
}
