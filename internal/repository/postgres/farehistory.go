package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/domain"
)

// FareHistoryRepository is a PostgreSQL implementation of the append-only
// fare audit trail. There is deliberately no Update or Delete.
type FareHistoryRepository struct {
	q Querier
}

// NewFareHistoryRepository creates a new PostgreSQL fare history repository.
func NewFareHistoryRepository(db *sql.DB) *FareHistoryRepository {
	return &FareHistoryRepository{q: db}
}

// Create appends one audit record.
func (r *FareHistoryRepository) Create(ctx context.Context, h *domain.FareHistory) error {
	query := `
		INSERT INTO fare_history (id, booking_id, calculated_by, distance_km, emergency_level,
			base_fare, per_km_rate, emergency_multiplier, estimated_fare, final_fare,
			override_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		h.ID,
		nullString(h.BookingID),
		nullString(h.CalculatedBy),
		h.DistanceKm,
		h.EmergencyLevel,
		h.Breakdown.BaseFare,
		h.Breakdown.PerKmRate,
		h.Breakdown.EmergencyMultiplier,
		h.EstimatedFare,
		nullFloat(h.FinalFare),
		nullString(h.OverrideReason),
		h.CreatedAt,
	)
	return err
}

// GetByBookingID returns all records for a booking, oldest first.
func (r *FareHistoryRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.FareHistory, error) {
	query := `
		SELECT id, booking_id, calculated_by, distance_km, emergency_level,
			base_fare, per_km_rate, emergency_multiplier, estimated_fare, final_fare,
			override_reason, created_at
		FROM fare_history WHERE booking_id = $1 ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.FareHistory
	for rows.Next() {
		var h domain.FareHistory
		var bID, calcBy, reason sql.NullString
		var finalFare sql.NullFloat64
		if err := rows.Scan(
			&h.ID,
			&bID,
			&calcBy,
			&h.DistanceKm,
			&h.EmergencyLevel,
			&h.Breakdown.BaseFare,
			&h.Breakdown.PerKmRate,
			&h.Breakdown.EmergencyMultiplier,
			&h.EstimatedFare,
			&finalFare,
			&reason,
			&h.CreatedAt,
		); err != nil {
			return nil, err
		}
		h.BookingID = bID.String
		h.CalculatedBy = calcBy.String
		h.FinalFare = finalFare.Float64
		h.OverrideReason = reason.String
		records = append(records, &h)
	}
	return records, rows.Err()
}
