package repository

import (
	"context"

	"dispatch/internal/domain"
)

// FareHistoryRepository defines the append-only fare audit trail. Records
// are never updated or deleted.
type FareHistoryRepository interface {
	// Create appends one audit record.
	Create(ctx context.Context, record *domain.FareHistory) error

	// GetByBookingID returns all records for a booking, oldest first.
	GetByBookingID(ctx context.Context, bookingID string) ([]*domain.FareHistory, error)
}
