package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// OTPFilter narrows OTP listing. Verified/Expired are tri-state: nil means
// "no filter".
type OTPFilter struct {
	Verified *bool
	Expired  *bool
	Page     int
	Limit    int
}

// OTPRepository defines the persistence operations for one-time codes.
// At most one record exists per booking; Upsert overwrites in place.
type OTPRepository interface {
	// GetByBookingID retrieves the OTP record for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.OTPRecord, error)

	// Upsert inserts the record, or overwrites code, sent time, verified
	// state and email metadata if one already exists for the booking.
	Upsert(ctx context.Context, otp *domain.OTPRecord) error

	// Update rewrites an existing record (verification, email metadata).
	Update(ctx context.Context, otp *domain.OTPRecord) error

	// DeleteExpired removes unverified records sent before the cutoff and
	// returns the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)

	// List returns a page of records matching the filter plus the total.
	List(ctx context.Context, filter OTPFilter) ([]*domain.OTPRecord, int, error)

	// Count returns the total number of OTP records.
	Count(ctx context.Context) (int, error)

	// CountVerified returns the number of verified records.
	CountVerified(ctx context.Context) (int, error)

	// CountExpired returns the number of unverified records sent before
	// the cutoff.
	CountExpired(ctx context.Context, cutoff time.Time) (int, error)
}
