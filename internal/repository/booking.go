package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// BookingFilter narrows List results. Zero values mean "no filter".
type BookingFilter struct {
	Status      domain.BookingStatus
	Search      string // matched against booking id and OTP code
	From        time.Time
	To          time.Time
	AmbulanceID string
	Page        int
	Limit       int
}

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByUserID retrieves all bookings owned by a user, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Booking, error)

	// Update rewrites an existing booking document.
	Update(ctx context.Context, booking *domain.Booking) error

	// List returns a page of bookings matching the filter plus the total
	// match count. An empty result is not an error.
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, int, error)

	// Count returns the total number of bookings.
	Count(ctx context.Context) (int, error)

	// CountByStatus returns the number of bookings in the given status.
	CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error)

	// CountOTPVerified returns the number of bookings with the given OTP
	// verification flag.
	CountOTPVerified(ctx context.Context, verified bool) (int, error)
}
