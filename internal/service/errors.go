package service

import (
	"errors"
	"fmt"

	"dispatch/internal/domain"
)

var (
	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidBookingID is returned when a booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidEmergencyLevel is returned when the emergency level is not
	// Low, Medium or Critical.
	ErrInvalidEmergencyLevel = errors.New("invalid emergency level")

	// ErrMissingAddress is returned when a pickup or drop address is empty.
	ErrMissingAddress = errors.New("pickup and drop addresses are required")

	// ErrGeocodeFailed is returned when an address cannot be resolved.
	ErrGeocodeFailed = errors.New("failed to geocode one or both addresses")

	// ErrAmbulanceBusy is returned when assigning an ambulance that is
	// currently busy.
	ErrAmbulanceBusy = errors.New("ambulance is currently busy")

	// ErrInvalidAmbulanceStatus is returned for an unknown ambulance status.
	ErrInvalidAmbulanceStatus = errors.New("invalid ambulance status")

	// ErrInvalidAmbulanceID is returned when an ambulance ID is empty.
	ErrInvalidAmbulanceID = errors.New("invalid ambulance id")

	// ErrInvalidPlateNumber is returned when a plate number is empty.
	ErrInvalidPlateNumber = errors.New("invalid plate number")

	// ErrBookingCompleted is returned when cancelling a completed booking.
	ErrBookingCompleted = errors.New("completed booking cannot be cancelled")

	// ErrBookingNotCompleted is returned when feedback is submitted for a
	// booking that has not completed.
	ErrBookingNotCompleted = errors.New("feedback allowed only on completed bookings")

	// ErrBookingNotPending is returned when editing details of a booking
	// that is no longer pending.
	ErrBookingNotPending = errors.New("details editable only while booking is pending")

	// ErrInvalidRating is returned when a rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrOTPExpired is returned when re-sending an OTP that is past its
	// validity window.
	ErrOTPExpired = errors.New("otp has expired, regenerate a new one")

	// ErrInvalidCoordinates is returned when latitude/longitude are out of
	// range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// InvalidTransitionError reports a booking status transition that is not in
// the allowed-transition table, naming the attempted pair.
type InvalidTransitionError struct {
	From domain.BookingStatus
	To   domain.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
