package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// 2. BOOKING LIFECYCLE TRANSITIONS
// ──────────────────────────────────────────────

// newLifecycleFixture wires a BookingService with a booking already stored
// in the given status.
func newLifecycleFixture(status domain.BookingStatus) (*service.BookingService, *MockBookingRepository, *MockAmbulanceRepository) {
	bookingRepo := NewMockBookingRepository()
	otpRepo := NewMockOTPRepository()
	fareRepo := NewMockFareHistoryRepository()
	ambulanceRepo := NewMockAmbulanceRepository()
	driverRepo := NewMockDriverRepository()
	userRepo := NewMockUserRepository()

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Ravi", Status: domain.DriverStatusActive})

	fareService := service.NewFareService(fareRepo)
	otpService := service.NewOTPService(otpRepo, bookingRepo, userRepo, NewMockMailer())
	bookingService := service.NewBookingService(bookingRepo, ambulanceRepo, driverRepo, fareService, otpService, NewFakeGeocoder())

	bookingRepo.AddBooking(&domain.Booking{
		ID:             "booking-1",
		UserID:         "user-1",
		EmergencyLevel: domain.EmergencyMedium,
		Status:         status,
		CreatedAt:      time.Now(),
	})

	return bookingService, bookingRepo, ambulanceRepo
}

func TestStatusTransitions_FullTable(t *testing.T) {
	t.Parallel()

	statuses := []domain.BookingStatus{
		domain.BookingStatusPending,
		domain.BookingStatusAssigned,
		domain.BookingStatusEnroute,
		domain.BookingStatusArrived,
		domain.BookingStatusInTransit,
		domain.BookingStatusCompleted,
		domain.BookingStatusCancelled,
	}

	allowed := map[domain.BookingStatus]domain.BookingStatus{
		domain.BookingStatusPending:   domain.BookingStatusAssigned,
		domain.BookingStatusAssigned:  domain.BookingStatusEnroute,
		domain.BookingStatusEnroute:   domain.BookingStatusArrived,
		domain.BookingStatusArrived:   domain.BookingStatusInTransit,
		domain.BookingStatusInTransit: domain.BookingStatusCompleted,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				t.Parallel()

				bookingService, bookingRepo, _ := newLifecycleFixture(from)

				_, err := bookingService.AdminUpdate(context.Background(), "booking-1", service.AdminUpdateRequest{
					Status: to,
				})

				wantOK := allowed[from] == to ||
					(to == domain.BookingStatusCancelled && from != domain.BookingStatusCompleted && from != domain.BookingStatusCancelled)

				if wantOK {
					if err != nil {
						t.Fatalf("expected transition %s -> %s to succeed, got: %v", from, to, err)
					}
					if got := bookingRepo.GetBooking("booking-1").Status; got != to {
						t.Errorf("expected stored status %s, got %s", to, got)
					}
					return
				}

				var transitionErr *service.InvalidTransitionError
				if !errors.As(err, &transitionErr) {
					t.Fatalf("expected InvalidTransitionError for %s -> %s, got: %v", from, to, err)
				}
				if got := bookingRepo.GetBooking("booking-1").Status; got != from {
					t.Errorf("expected status unchanged at %s, got %s", from, got)
				}
			})
		}
	}
}

func TestAdminUpdate_BusyAmbulance_RejectedWithoutMutation(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, ambulanceRepo := newLifecycleFixture(domain.BookingStatusPending)
	ambulanceRepo.AddAmbulance(&domain.Ambulance{
		ID:          "amb-1",
		PlateNumber: "KA-01-1234",
		Status:      domain.AmbulanceStatusBusy,
	})

	_, err := bookingService.AdminUpdate(context.Background(), "booking-1", service.AdminUpdateRequest{
		AmbulanceID: "amb-1",
	})
	if !errors.Is(err, service.ErrAmbulanceBusy) {
		t.Fatalf("expected ErrAmbulanceBusy, got: %v", err)
	}

	stored := bookingRepo.GetBooking("booking-1")
	if stored.AmbulanceID != "" {
		t.Error("expected no ambulance assignment")
	}
	if stored.Status != domain.BookingStatusPending {
		t.Errorf("expected booking to stay pending, got %s", stored.Status)
	}
}

func TestAdminUpdate_AssignAmbulance_AutoAdvancesPending(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, ambulanceRepo := newLifecycleFixture(domain.BookingStatusPending)
	ambulanceRepo.AddAmbulance(&domain.Ambulance{
		ID:          "amb-1",
		PlateNumber: "KA-01-1234",
		Status:      domain.AmbulanceStatusAvailable,
	})

	booking, err := bookingService.AdminUpdate(context.Background(), "booking-1", service.AdminUpdateRequest{
		AmbulanceID: "amb-1",
		DriverID:    "driver-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if booking.Status != domain.BookingStatusAssigned {
		t.Errorf("expected auto-advance to assigned, got %s", booking.Status)
	}
	if booking.AmbulanceID != "amb-1" || booking.DriverID != "driver-1" {
		t.Errorf("expected assignments, got ambulance=%s driver=%s", booking.AmbulanceID, booking.DriverID)
	}

	stored := bookingRepo.GetBooking("booking-1")
	if stored.Status != domain.BookingStatusAssigned {
		t.Errorf("expected persisted status assigned, got %s", stored.Status)
	}
}

func TestAdminUpdate_UnknownDriver_Fails(t *testing.T) {
	t.Parallel()

	bookingService, _, _ := newLifecycleFixture(domain.BookingStatusPending)

	_, err := bookingService.AdminUpdate(context.Background(), "booking-1", service.AdminUpdateRequest{
		DriverID: "driver-404",
	})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestCancel_SetsReasonAndRefundFlag(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, _ := newLifecycleFixture(domain.BookingStatusAssigned)

	booking, err := bookingService.Cancel(context.Background(), "booking-1", "")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
	if booking.CancellationReason != "No reason provided" {
		t.Errorf("expected default reason, got %q", booking.CancellationReason)
	}
	if !booking.IsRefunded {
		t.Error("expected refund flag to be set")
	}

	stored := bookingRepo.GetBooking("booking-1")
	if stored.Status != domain.BookingStatusCancelled {
		t.Errorf("expected persisted cancellation, got %s", stored.Status)
	}
}

func TestCancel_CompletedBooking_Fails(t *testing.T) {
	t.Parallel()

	bookingService, bookingRepo, _ := newLifecycleFixture(domain.BookingStatusCompleted)

	_, err := bookingService.Cancel(context.Background(), "booking-1", "too late")
	if !errors.Is(err, service.ErrBookingCompleted) {
		t.Fatalf("expected ErrBookingCompleted, got: %v", err)
	}
	if got := bookingRepo.GetBooking("booking-1").Status; got != domain.BookingStatusCompleted {
		t.Errorf("expected booking to stay completed, got %s", got)
	}
}

func TestAddFeedback_Rules(t *testing.T) {
	t.Parallel()

	t.Run("completed booking accepts rating", func(t *testing.T) {
		t.Parallel()

		bookingService, bookingRepo, _ := newLifecycleFixture(domain.BookingStatusCompleted)

		booking, err := bookingService.AddFeedback(context.Background(), "booking-1", 5, "quick response")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if booking.Rating != 5 || booking.Feedback != "quick response" {
			t.Errorf("unexpected feedback state: %+v", booking)
		}
		if bookingRepo.GetBooking("booking-1").Rating != 5 {
			t.Error("expected rating to be persisted")
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		t.Parallel()

		bookingService, _, _ := newLifecycleFixture(domain.BookingStatusCompleted)

		for _, rating := range []int{0, 6, -1} {
			if _, err := bookingService.AddFeedback(context.Background(), "booking-1", rating, ""); !errors.Is(err, service.ErrInvalidRating) {
				t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
			}
		}
	})

	t.Run("booking not completed", func(t *testing.T) {
		t.Parallel()

		bookingService, _, _ := newLifecycleFixture(domain.BookingStatusInTransit)

		if _, err := bookingService.AddFeedback(context.Background(), "booking-1", 4, ""); !errors.Is(err, service.ErrBookingNotCompleted) {
			t.Errorf("expected ErrBookingNotCompleted, got %v", err)
		}
	})
}

func TestUpdateDetails_OnlyWhilePending(t *testing.T) {
	t.Parallel()

	notes := "wheelchair access needed"

	t.Run("pending booking is editable", func(t *testing.T) {
		t.Parallel()

		bookingService, bookingRepo, _ := newLifecycleFixture(domain.BookingStatusPending)

		booking, err := bookingService.UpdateDetails(context.Background(), "booking-1", service.UpdateDetailsRequest{
			CustomerNotes:    &notes,
			EmergencyContact: &domain.EmergencyContact{Name: "Maya", Phone: "555-0101"},
		})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if booking.CustomerNotes != notes {
			t.Errorf("expected notes %q, got %q", notes, booking.CustomerNotes)
		}
		if bookingRepo.GetBooking("booking-1").EmergencyContact.Name != "Maya" {
			t.Error("expected emergency contact to be persisted")
		}
	})

	t.Run("assigned booking is frozen", func(t *testing.T) {
		t.Parallel()

		bookingService, _, _ := newLifecycleFixture(domain.BookingStatusAssigned)

		_, err := bookingService.UpdateDetails(context.Background(), "booking-1", service.UpdateDetailsRequest{
			CustomerNotes: &notes,
		})
		if !errors.Is(err, service.ErrBookingNotPending) {
			t.Errorf("expected ErrBookingNotPending, got %v", err)
		}
	})
}

func TestAdminUpdate_FinalFareOverride_Audited(t *testing.T) {
	t.Parallel()

	bookingRepo := NewMockBookingRepository()
	fareRepo := NewMockFareHistoryRepository()
	ambulanceRepo := NewMockAmbulanceRepository()
	driverRepo := NewMockDriverRepository()

	fareService := service.NewFareService(fareRepo)
	otpService := service.NewOTPService(NewMockOTPRepository(), bookingRepo, NewMockUserRepository(), NewMockMailer())
	bookingService := service.NewBookingService(bookingRepo, ambulanceRepo, driverRepo, fareService, otpService, NewFakeGeocoder())

	bookingRepo.AddBooking(&domain.Booking{
		ID:            "booking-1",
		UserID:        "user-1",
		Status:        domain.BookingStatusCompleted,
		EstimatedFare: 520.00,
		DistanceKm:    8.0,
	})

	final := 450.0
	booking, err := bookingService.AdminUpdate(context.Background(), "booking-1", service.AdminUpdateRequest{
		FinalFare:      &final,
		OverrideReason: "goodwill discount",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if booking.FinalFare != 450.0 {
		t.Errorf("expected final fare 450, got %f", booking.FinalFare)
	}

	rec := fareRepo.LastRecord()
	if rec == nil {
		t.Fatal("expected an audit record")
	}
	if rec.FinalFare != 450.0 || rec.OverrideReason != "goodwill discount" {
		t.Errorf("unexpected audit record: %+v", rec)
	}
}
