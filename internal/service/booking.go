package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/geocode"
	"dispatch/internal/repository"
)

// defaultCancelReason is stored when a caller cancels without giving one.
const defaultCancelReason = "No reason provided"

// BookingService owns the booking lifecycle: creation, status transitions,
// assignments, cancellation, feedback and detail edits. Transition checks run
// against the persisted status at the time of the request; concurrent updates
// are last-write-wins, with no version check.
type BookingService struct {
	bookingRepo   repository.BookingRepository
	ambulanceRepo repository.AmbulanceRepository
	driverRepo    repository.DriverRepository
	fareService   *FareService
	otpService    *OTPService
	geocoder      geocode.Geocoder
	now           func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	ambulanceRepo repository.AmbulanceRepository,
	driverRepo repository.DriverRepository,
	fareService *FareService,
	otpService *OTPService,
	geocoder geocode.Geocoder,
) *BookingService {
	return &BookingService{
		bookingRepo:   bookingRepo,
		ambulanceRepo: ambulanceRepo,
		driverRepo:    driverRepo,
		fareService:   fareService,
		otpService:    otpService,
		geocoder:      geocoder,
		now:           time.Now,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	UserID         string
	EmergencyLevel domain.EmergencyLevel
	PickupAddress  string
	DropAddress    string
	Overrides      FareOverrides
	PaymentMethod  domain.PaymentMethod
}

// CreateBookingResult is the outcome of a successful booking creation.
type CreateBookingResult struct {
	Booking   *domain.Booking
	OTPCode   string
	ExpiresAt time.Time
}

// Create geocodes both addresses, computes the billable distance and fare,
// persists the booking in pending status, issues an OTP and sends it by
// email best-effort. An email failure never fails the creation.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if !domain.ValidEmergencyLevel(req.EmergencyLevel) {
		return nil, ErrInvalidEmergencyLevel
	}
	if req.PickupAddress == "" || req.DropAddress == "" {
		return nil, ErrMissingAddress
	}

	pickup, err := s.geocoder.Geocode(ctx, req.PickupAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeocodeFailed, req.PickupAddress)
	}
	drop, err := s.geocoder.Geocode(ctx, req.DropAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeocodeFailed, req.DropAddress)
	}

	distanceKm := bookingDistanceKm(pickup.Lat, pickup.Lng, drop.Lat, drop.Lng)

	fare, err := s.fareService.Compute(ctx, FareInput{
		CalculatedBy:   req.UserID,
		DistanceKm:     distanceKm,
		EmergencyLevel: req.EmergencyLevel,
		Overrides:      req.Overrides,
	})
	if err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCash
	}

	now := s.now()
	booking := &domain.Booking{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		EmergencyLevel: req.EmergencyLevel,
		PickupLocation: domain.GeoPoint{Lat: pickup.Lat, Lng: pickup.Lng, Address: req.PickupAddress},
		DropLocation:   domain.GeoPoint{Lat: drop.Lat, Lng: drop.Lng, Address: req.DropAddress},
		DistanceKm:     distanceKm,
		EstimatedFare:  fare.EstimatedFare,
		FareBreakdown:  fare.Breakdown,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		PaymentMethod:  paymentMethod,
		Status:         domain.BookingStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	otp, err := s.otpService.Issue(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.OTP = otp.Code

	// Best-effort delivery; the booking stands even if the email fails.
	if err := s.otpService.SendEmail(ctx, booking.ID); err != nil {
		log.Printf("otp email for booking %s failed: %v", booking.ID, err)
	}

	return &CreateBookingResult{
		Booking:   booking,
		OTPCode:   otp.Code,
		ExpiresAt: otp.SentTime.Add(domain.OTPExpiry),
	}, nil
}

// FareEstimateRequest contains the parameters for a fare estimate.
type FareEstimateRequest struct {
	PickupAddress  string
	DropAddress    string
	EmergencyLevel domain.EmergencyLevel
	Overrides      FareOverrides
}

// FareEstimateResult is a fare quote with no booking attached. The estimate
// is still recorded in fare history for audit.
type FareEstimateResult struct {
	DistanceKm    float64
	EstimatedFare float64
	Breakdown     domain.FareBreakdown
}

// FareEstimate quotes a fare for an address pair without creating a booking.
func (s *BookingService) FareEstimate(ctx context.Context, req FareEstimateRequest) (*FareEstimateResult, error) {
	if !domain.ValidEmergencyLevel(req.EmergencyLevel) {
		return nil, ErrInvalidEmergencyLevel
	}
	if req.PickupAddress == "" || req.DropAddress == "" {
		return nil, ErrMissingAddress
	}

	pickup, err := s.geocoder.Geocode(ctx, req.PickupAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeocodeFailed, req.PickupAddress)
	}
	drop, err := s.geocoder.Geocode(ctx, req.DropAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeocodeFailed, req.DropAddress)
	}

	distanceKm := bookingDistanceKm(pickup.Lat, pickup.Lng, drop.Lat, drop.Lng)

	fare, err := s.fareService.Compute(ctx, FareInput{
		DistanceKm:     distanceKm,
		EmergencyLevel: req.EmergencyLevel,
		Overrides:      req.Overrides,
	})
	if err != nil {
		return nil, err
	}

	return &FareEstimateResult{
		DistanceKm:    distanceKm,
		EstimatedFare: fare.EstimatedFare,
		Breakdown:     fare.Breakdown,
	}, nil
}

// Get retrieves a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, id)
}

// GetUserBookings retrieves all bookings owned by a user, newest first.
func (s *BookingService) GetUserBookings(ctx context.Context, userID string) ([]*domain.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.bookingRepo.GetByUserID(ctx, userID)
}

// BookingSummary is a booking joined with its fare audit trail.
type BookingSummary struct {
	Booking     *domain.Booking
	FareHistory []*domain.FareHistory
}

// Summary returns a booking together with its fare history.
func (s *BookingService) Summary(ctx context.Context, id string) (*BookingSummary, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.fareService.History(ctx, id)
	if err != nil {
		return nil, err
	}

	return &BookingSummary{Booking: booking, FareHistory: history}, nil
}

// ListBookingsRequest filters the paginated booking list.
type ListBookingsRequest struct {
	Status      domain.BookingStatus
	Search      string
	From        time.Time
	To          time.Time
	PlateNumber string
	Page        int
	Limit       int
}

// List returns a page of bookings plus the total match count. A plate-number
// filter that matches no ambulance short-circuits to an empty page.
func (s *BookingService) List(ctx context.Context, req ListBookingsRequest) ([]*domain.Booking, int, error) {
	filter := repository.BookingFilter{
		Status: req.Status,
		Search: req.Search,
		From:   req.From,
		To:     req.To,
		Page:   req.Page,
		Limit:  req.Limit,
	}

	if req.PlateNumber != "" {
		ambulance, err := s.ambulanceRepo.FindByPlateLike(ctx, req.PlateNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return []*domain.Booking{}, 0, nil
			}
			return nil, 0, err
		}
		filter.AmbulanceID = ambulance.ID
	}

	return s.bookingRepo.List(ctx, filter)
}

// AdminUpdateRequest carries the mutations an operator may apply in one
// call. Zero values mean "leave unchanged".
type AdminUpdateRequest struct {
	OTP            string
	Status         domain.BookingStatus
	DriverID       string
	AmbulanceID    string
	RegenerateOTP  bool
	FinalFare      *float64
	OverrideReason string
}

// AdminUpdate applies operator mutations to a booking. Status changes are
// checked against the allowed-transition table; assigning a busy ambulance
// fails without touching either entity; assigning an ambulance to a pending
// booking auto-advances it to assigned.
func (s *BookingService) AdminUpdate(ctx context.Context, id string, req AdminUpdateRequest) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RegenerateOTP {
		record, err := s.otpService.Issue(ctx, id)
		if err != nil {
			return nil, err
		}
		booking.OTP = record.Code
		booking.OTPVerified = false
	}

	if req.OTP != "" {
		booking.OTP = req.OTP
	}

	if req.Status != "" {
		if !booking.Status.CanTransition(req.Status) {
			return nil, &InvalidTransitionError{From: booking.Status, To: req.Status}
		}
		booking.Status = req.Status
	}

	if req.DriverID != "" {
		if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
			return nil, err
		}
		booking.DriverID = req.DriverID
	}

	if req.AmbulanceID != "" {
		ambulance, err := s.ambulanceRepo.GetByID(ctx, req.AmbulanceID)
		if err != nil {
			return nil, err
		}
		if ambulance.Status == domain.AmbulanceStatusBusy {
			return nil, ErrAmbulanceBusy
		}
		booking.AmbulanceID = req.AmbulanceID
		if booking.Status == domain.BookingStatusPending {
			booking.Status = domain.BookingStatusAssigned
		}
	}

	if req.FinalFare != nil {
		booking.FinalFare = *req.FinalFare
		if err := s.fareService.RecordOverride(ctx, booking, *req.FinalFare, req.OverrideReason, "admin"); err != nil {
			return nil, err
		}
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel cancels a booking unless it has already completed. The refund flag
// is set unconditionally; no payment reversal is performed.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCompleted {
		return nil, ErrBookingCompleted
	}

	if reason == "" {
		reason = defaultCancelReason
	}

	booking.Status = domain.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.IsRefunded = true

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// AddFeedback stores a rating and feedback text; permitted only once the
// booking has completed.
func (s *BookingService) AddFeedback(ctx context.Context, id string, rating int, feedback string) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	booking.Rating = rating
	booking.Feedback = feedback

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateDetailsRequest carries customer-editable fields. Nil means "leave
// unchanged".
type UpdateDetailsRequest struct {
	CustomerNotes       *string
	MedicalRequirements *string
	EmergencyContact    *domain.EmergencyContact
}

// UpdateDetails edits customer notes, medical requirements or the emergency
// contact; permitted only while the booking is pending.
func (s *BookingService) UpdateDetails(ctx context.Context, id string, req UpdateDetailsRequest) (*domain.Booking, error) {
	if id == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, ErrBookingNotPending
	}

	if req.CustomerNotes != nil {
		booking.CustomerNotes = *req.CustomerNotes
	}
	if req.MedicalRequirements != nil {
		booking.MedicalRequirements = *req.MedicalRequirements
	}
	if req.EmergencyContact != nil {
		booking.EmergencyContact = *req.EmergencyContact
	}

	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// BookingStats is a booking count snapshot composed from independent count
// queries; like OTPStats it is not atomic.
type BookingStats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Completed     int `json:"completed"`
	OTPVerified   int `json:"otpVerified"`
	OTPUnverified int `json:"otpUnverified"`
}

// Stats returns booking counts by status and OTP verification.
func (s *BookingService) Stats(ctx context.Context) (*BookingStats, error) {
	total, err := s.bookingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.bookingRepo.CountByStatus(ctx, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.CountByStatus(ctx, domain.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}

	verified, err := s.bookingRepo.CountOTPVerified(ctx, true)
	if err != nil {
		return nil, err
	}

	unverified, err := s.bookingRepo.CountOTPVerified(ctx, false)
	if err != nil {
		return nil, err
	}

	return &BookingStats{
		Total:         total,
		Pending:       pending,
		Completed:     completed,
		OTPVerified:   verified,
		OTPUnverified: unverified,
	}, nil
}
