package postgres

import (
	"context"
	"database/sql"
	"time"

	"dispatch/internal/domain"
)

// AnalyticsRepository is a PostgreSQL implementation of
// repository.AnalyticsRepository. All queries are plain GROUP BY passes over
// the bookings table; nothing here mutates state.
type AnalyticsRepository struct {
	q Querier
}

// NewAnalyticsRepository creates a new PostgreSQL analytics repository.
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{q: db}
}

// BookingsPerDay groups booking counts by calendar day within [from, to].
func (r *AnalyticsRepository) BookingsPerDay(ctx context.Context, from, to time.Time) ([]domain.DailyCount, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM bookings
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyCount
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RevenuePerDay sums paid revenue by calendar day within [from, to]. The
// final fare wins over the estimate when an override was recorded.
func (r *AnalyticsRepository) RevenuePerDay(ctx context.Context, from, to time.Time) ([]domain.DailyRevenue, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day,
			COALESCE(SUM(COALESCE(final_fare, estimated_fare)), 0)
		FROM bookings
		WHERE created_at >= $1 AND created_at <= $2 AND payment_status = 'paid'
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyRevenue
	for rows.Next() {
		var v domain.DailyRevenue
		if err := rows.Scan(&v.Day, &v.Revenue); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// TopDrivers ranks drivers by completed bookings within [from, to].
func (r *AnalyticsRepository) TopDrivers(ctx context.Context, from, to time.Time, limit int) ([]domain.DriverPerformance, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT b.driver_id,
			COALESCE(d.name, ''), COALESCE(d.email, ''),
			COUNT(*),
			COALESCE(SUM(COALESCE(b.final_fare, b.estimated_fare)), 0),
			COALESCE(SUM(b.distance_km), 0)
		FROM bookings b
		LEFT JOIN drivers d ON d.id = b.driver_id
		WHERE b.created_at >= $1 AND b.created_at <= $2
			AND b.status = 'completed' AND b.driver_id IS NOT NULL
		GROUP BY b.driver_id, d.name, d.email
		ORDER BY COUNT(*) DESC
		LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DriverPerformance
	for rows.Next() {
		var p domain.DriverPerformance
		if err := rows.Scan(&p.DriverID, &p.DriverName, &p.DriverEmail,
			&p.Completed, &p.TotalRevenue, &p.TotalDistance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// EmergencyCounts groups all bookings by emergency level, most common first.
func (r *AnalyticsRepository) EmergencyCounts(ctx context.Context) ([]domain.EmergencyCount, error) {
	query := `
		SELECT emergency_level, COUNT(*)
		FROM bookings
		GROUP BY emergency_level
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmergencyCount
	for rows.Next() {
		var c domain.EmergencyCount
		if err := rows.Scan(&c.Level, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PickupPoints returns pickup coordinates for bookings in [from, to].
func (r *AnalyticsRepository) PickupPoints(ctx context.Context, from, to time.Time) ([]domain.PickupPoint, error) {
	query := `
		SELECT pickup_lat, pickup_lng, status, emergency_level
		FROM bookings
		WHERE created_at >= $1 AND created_at <= $2
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PickupPoint
	for rows.Next() {
		var p domain.PickupPoint
		if err := rows.Scan(&p.Lat, &p.Lng, &p.Status, &p.EmergencyLevel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
