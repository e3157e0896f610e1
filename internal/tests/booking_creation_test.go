package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// 1. BOOKING CREATION EDGE CASES
// ──────────────────────────────────────────────

// newBookingFixture wires a BookingService against fresh mocks with two
// resolvable addresses roughly 10 km apart.
func newBookingFixture() (*service.BookingService, *MockBookingRepository, *MockOTPRepository, *MockFareHistoryRepository, *MockMailer, *FakeGeocoder) {
	bookingRepo := NewMockBookingRepository()
	otpRepo := NewMockOTPRepository()
	fareRepo := NewMockFareHistoryRepository()
	ambulanceRepo := NewMockAmbulanceRepository()
	driverRepo := NewMockDriverRepository()
	userRepo := NewMockUserRepository()
	mailer := NewMockMailer()
	geocoder := NewFakeGeocoder()

	geocoder.AddAddress("City Hospital", 12.9716, 77.5946)
	geocoder.AddAddress("Airport Road", 13.0600, 77.5900)

	userRepo.AddUser(&domain.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", Phone: "555-0100"})

	fareService := service.NewFareService(fareRepo)
	otpService := service.NewOTPService(otpRepo, bookingRepo, userRepo, mailer)
	bookingService := service.NewBookingService(bookingRepo, ambulanceRepo, driverRepo, fareService, otpService, geocoder)

	return bookingService, bookingRepo, otpRepo, fareRepo, mailer, geocoder
}

func TestBookingCreation_ValidInput_Succeeds(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, otpRepo, fareRepo, mailer, _ := newBookingFixture()

	result, err := bookingService.Create(context.Background(), service.CreateBookingRequest{
		UserID:         "user-1",
		EmergencyLevel: domain.EmergencyMedium,
		PickupAddress:  "City Hospital",
		DropAddress:    "Airport Road",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Booking.ID == "" {
		t.Error("expected booking ID to be set")
	}
	if result.Booking.Status != domain.BookingStatusPending {
		t.Errorf("expected status pending, got %s", result.Booking.Status)
	}
	if result.Booking.PaymentStatus != domain.PaymentStatusUnpaid {
		t.Errorf("expected payment status unpaid, got %s", result.Booking.PaymentStatus)
	}
	if result.Booking.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", result.Booking.DistanceKm)
	}
	if result.Booking.EstimatedFare <= 0 {
		t.Errorf("expected positive fare, got %f", result.Booking.EstimatedFare)
	}

	// One OTP was issued and delivered.
	if len(result.OTPCode) != 6 {
		t.Errorf("expected 6-digit OTP, got %q", result.OTPCode)
	}
	if otpRepo.CountRecords() != 1 {
		t.Errorf("expected 1 OTP record, got %d", otpRepo.CountRecords())
	}
	if mailer.SentCount() != 1 {
		t.Errorf("expected 1 email, got %d", mailer.SentCount())
	}
	if sent := mailer.LastSent(); sent == nil || sent.To != "asha@example.com" {
		t.Errorf("expected email to asha@example.com, got %+v", sent)
	}

	// Fare history has the creation record.
	if fareRepo.CountRecords() != 1 {
		t.Errorf("expected 1 fare history record, got %d", fareRepo.CountRecords())
	}

	// The persisted booking carries the OTP mirror.
	stored := bookingRepo.GetBooking(result.Booking.ID)
	if stored == nil {
		t.Fatal("expected booking to be persisted")
	}
	if stored.OTP != result.OTPCode {
		t.Errorf("expected stored OTP %s, got %s", result.OTPCode, stored.OTP)
	}
}

func TestBookingCreation_EmailFailure_StillSucceeds(t *testing.T) {
	t.Parallel()

	bookingService, _, otpRepo, _, mailer, _ := newBookingFixture()
	mailer.SendError = ErrMockTimeout

	result, err := bookingService.Create(context.Background(), service.CreateBookingRequest{
		UserID:         "user-1",
		EmergencyLevel: domain.EmergencyCritical,
		PickupAddress:  "City Hospital",
		DropAddress:    "Airport Road",
	})
	if err != nil {
		t.Fatalf("expected creation to survive an email failure, got: %v", err)
	}

	rec := otpRepo.GetRecord(result.Booking.ID)
	if rec == nil {
		t.Fatal("expected OTP record to exist")
	}
	if rec.EmailSent {
		t.Error("expected email_sent to remain false")
	}
	if rec.EmailError == "" {
		t.Error("expected email error to be recorded")
	}
	if rec.EmailRetryCount != 1 {
		t.Errorf("expected retry count 1, got %d", rec.EmailRetryCount)
	}
}

func TestBookingCreation_InvalidInput_Fails(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.CreateBookingRequest
		wantErr error
	}{
		{
			name: "missing user id",
			req: service.CreateBookingRequest{
				EmergencyLevel: domain.EmergencyLow,
				PickupAddress:  "City Hospital",
				DropAddress:    "Airport Road",
			},
			wantErr: service.ErrInvalidUserID,
		},
		{
			name: "unknown emergency level",
			req: service.CreateBookingRequest{
				UserID:         "user-1",
				EmergencyLevel: "High",
				PickupAddress:  "City Hospital",
				DropAddress:    "Airport Road",
			},
			wantErr: service.ErrInvalidEmergencyLevel,
		},
		{
			name: "missing pickup address",
			req: service.CreateBookingRequest{
				UserID:         "user-1",
				EmergencyLevel: domain.EmergencyLow,
				DropAddress:    "Airport Road",
			},
			wantErr: service.ErrMissingAddress,
		},
		{
			name: "unresolvable address",
			req: service.CreateBookingRequest{
				UserID:         "user-1",
				EmergencyLevel: domain.EmergencyLow,
				PickupAddress:  "Nowhere Street",
				DropAddress:    "Airport Road",
			},
			wantErr: service.ErrGeocodeFailed,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			bookingService, bookingRepo, _, _, _, _ := newBookingFixture()

			_, err := bookingService.Create(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if bookingRepo.CountBookings() != 0 {
				t.Error("expected no booking to be persisted")
			}
		})
	}
}

func TestFareEstimate_DoesNotCreateBooking(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, otpRepo, fareRepo, _, _ := newBookingFixture()

	result, err := bookingService.FareEstimate(context.Background(), service.FareEstimateRequest{
		PickupAddress:  "City Hospital",
		DropAddress:    "Airport Road",
		EmergencyLevel: domain.EmergencyLow,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.EstimatedFare <= 0 {
		t.Errorf("expected positive estimate, got %f", result.EstimatedFare)
	}
	if bookingRepo.CountBookings() != 0 {
		t.Error("expected no booking from an estimate")
	}
	if otpRepo.CountRecords() != 0 {
		t.Error("expected no OTP from an estimate")
	}
	// The quote is still auditable.
	if fareRepo.CountRecords() != 1 {
		t.Errorf("expected 1 fare history record, got %d", fareRepo.CountRecords())
	}
}

func TestBookingList_UnknownPlate_ReturnsEmptyPage(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, _, _, _, _ := newBookingFixture()
	bookingRepo.AddBooking(&domain.Booking{ID: "b-1", UserID: "user-1", Status: domain.BookingStatusPending})

	bookings, total, err := bookingService.List(context.Background(), service.ListBookingsRequest{
		PlateNumber: "ZZ-404",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if total != 0 || len(bookings) != 0 {
		t.Errorf("expected empty page, got %d bookings (total %d)", len(bookings), total)
	}
}
