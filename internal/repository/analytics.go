package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// AnalyticsRepository defines read-only aggregation queries over booking
// history. All queries are stateless and idempotent for a fixed window.
type AnalyticsRepository interface {
	// BookingsPerDay groups booking counts by calendar day within [from, to].
	BookingsPerDay(ctx context.Context, from, to time.Time) ([]domain.DailyCount, error)

	// RevenuePerDay sums paid revenue (final fare if set, else estimate)
	// by calendar day within [from, to].
	RevenuePerDay(ctx context.Context, from, to time.Time) ([]domain.DailyRevenue, error)

	// TopDrivers ranks drivers by completed bookings within [from, to],
	// limited to the given number of rows.
	TopDrivers(ctx context.Context, from, to time.Time, limit int) ([]domain.DriverPerformance, error)

	// EmergencyCounts groups all bookings by emergency level.
	EmergencyCounts(ctx context.Context) ([]domain.EmergencyCount, error)

	// PickupPoints returns pickup coordinates for bookings in [from, to].
	PickupPoints(ctx context.Context, from, to time.Time) ([]domain.PickupPoint, error)
}
