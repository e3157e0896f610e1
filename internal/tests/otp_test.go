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
// 3. OTP LIFECYCLE
// ──────────────────────────────────────────────

// newOTPFixture wires an OTPService with one pending booking owned by a
// known user.
func newOTPFixture() (*service.OTPService, *MockOTPRepository, *MockBookingRepository, *MockMailer) {
	bookingRepo := NewMockBookingRepository()
	otpRepo := NewMockOTPRepository()
	userRepo := NewMockUserRepository()
	mailer := NewMockMailer()

	userRepo.AddUser(&domain.User{ID: "user-1", Name: "Asha", Email: "asha@example.com"})
	bookingRepo.AddBooking(&domain.Booking{
		ID:     "booking-1",
		UserID: "user-1",
		Status: domain.BookingStatusPending,
	})

	return service.NewOTPService(otpRepo, bookingRepo, userRepo, mailer), otpRepo, bookingRepo, mailer
}

func TestOTPIssue_OverwritesInPlace(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, bookingRepo, _ := newOTPFixture()
	ctx := context.Background()

	first, err := otpService.Issue(ctx, "booking-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(first.Code) != 6 {
		t.Errorf("expected 6-digit code, got %q", first.Code)
	}

	second, err := otpService.Issue(ctx, "booking-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Still exactly one record per booking, same identity, fresh code.
	if otpRepo.CountRecords() != 1 {
		t.Errorf("expected 1 record, got %d", otpRepo.CountRecords())
	}
	if second.ID != first.ID {
		t.Errorf("expected record to be reused, got new ID %s", second.ID)
	}
	if second.Verified {
		t.Error("expected verified flag to be cleared")
	}

	// The booking mirror tracks the latest code.
	if got := bookingRepo.GetBooking("booking-1").OTP; got != second.Code {
		t.Errorf("expected booking OTP %s, got %s", second.Code, got)
	}
}

func TestOTPIssue_UnknownBooking_Fails(t *testing.T) {
	t.Parallel()

	otpService, _, _, _ := newOTPFixture()

	if _, err := otpService.Issue(context.Background(), "booking-404"); err == nil {
		t.Error("expected error for unknown booking")
	}
}

func TestOTPVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, bookingRepo, _ := newOTPFixture()
	ctx := context.Background()

	record, err := otpService.Issue(ctx, "booking-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Wrong code is a negative result, not an error.
	ok, err := otpService.Verify(ctx, "booking-1", "000000")
	if err != nil || ok {
		t.Fatalf("expected clean rejection for wrong code, got ok=%v err=%v", ok, err)
	}

	ok, err = otpService.Verify(ctx, "booking-1", record.Code)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to succeed")
	}

	stored := otpRepo.GetRecord("booking-1")
	if !stored.Verified || stored.VerifiedAt.IsZero() {
		t.Error("expected record to be marked verified")
	}
	if !bookingRepo.GetBooking("booking-1").OTPVerified {
		t.Error("expected booking otp_verified flag to be set")
	}

	// Single use: the same code never verifies twice.
	ok, err = otpService.Verify(ctx, "booking-1", record.Code)
	if err != nil || ok {
		t.Errorf("expected second verification to be rejected, got ok=%v err=%v", ok, err)
	}
}

func TestOTPVerify_MissingBooking_DoesNotConsumeCode(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, bookingRepo, _ := newOTPFixture()
	ctx := context.Background()

	otpRepo.AddRecord(&domain.OTPRecord{
		ID:        "otp-1",
		BookingID: "booking-2",
		Code:      "654321",
		SentTime:  time.Now(),
	})

	// The booking row is gone; the attempt fails without burning the code.
	if _, err := otpService.Verify(ctx, "booking-2", "654321"); err == nil {
		t.Fatal("expected error when the booking cannot be loaded")
	}
	if otpRepo.GetRecord("booking-2").Verified {
		t.Fatal("expected the record to stay unverified after the failure")
	}

	// Once the booking exists the same code still verifies.
	bookingRepo.AddBooking(&domain.Booking{ID: "booking-2", UserID: "user-1", Status: domain.BookingStatusPending})

	ok, err := otpService.Verify(ctx, "booking-2", "654321")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !ok {
		t.Error("expected the surviving code to verify")
	}
}

func TestOTPVerify_ExpiryWindow(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"well inside window", 1 * time.Minute, true},
		{"just inside window", domain.OTPExpiry - time.Second, true},
		{"just past window", domain.OTPExpiry + time.Second, false},
		{"long expired", time.Hour, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			otpService, otpRepo, _, _ := newOTPFixture()

			otpRepo.AddRecord(&domain.OTPRecord{
				ID:        "otp-1",
				BookingID: "booking-1",
				Code:      "123456",
				SentTime:  time.Now().Add(-tc.age),
			})

			ok, err := otpService.Verify(context.Background(), "booking-1", "123456")
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if ok != tc.want {
				t.Errorf("expected verified=%v at age %s, got %v", tc.want, tc.age, ok)
			}
		})
	}
}

func TestOTPResend_ExpiredCode_Fails(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, _, mailer := newOTPFixture()

	otpRepo.AddRecord(&domain.OTPRecord{
		ID:        "otp-1",
		BookingID: "booking-1",
		Code:      "123456",
		SentTime:  time.Now().Add(-domain.OTPExpiry - time.Minute),
	})

	err := otpService.Resend(context.Background(), "booking-1")
	if !errors.Is(err, service.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got: %v", err)
	}
	if mailer.SentCount() != 0 {
		t.Error("expected no email for an expired code")
	}
}

func TestOTPResend_KeepsCurrentCode(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, _, mailer := newOTPFixture()
	ctx := context.Background()

	record, err := otpService.Issue(ctx, "booking-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if err := otpService.Resend(ctx, "booking-1"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if mailer.SentCount() != 1 {
		t.Fatalf("expected 1 email, got %d", mailer.SentCount())
	}
	if sent := mailer.LastSent(); sent.Code != record.Code {
		t.Errorf("expected the unchanged code %s, got %s", record.Code, sent.Code)
	}
	if otpRepo.GetRecord("booking-1").Code != record.Code {
		t.Error("expected stored code to be unchanged")
	}
}

func TestOTPCleanup_RemovesOnlyExpiredUnverified(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, _, _ := newOTPFixture()
	now := time.Now()

	otpRepo.AddRecord(&domain.OTPRecord{ID: "o1", BookingID: "b-expired", Code: "111111", SentTime: now.Add(-time.Hour)})
	otpRepo.AddRecord(&domain.OTPRecord{ID: "o2", BookingID: "b-fresh", Code: "222222", SentTime: now.Add(-time.Minute)})
	otpRepo.AddRecord(&domain.OTPRecord{ID: "o3", BookingID: "b-verified", Code: "333333", SentTime: now.Add(-time.Hour), Verified: true})

	deleted, err := otpService.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deletion, got %d", deleted)
	}

	if otpRepo.GetRecord("b-expired") != nil {
		t.Error("expected expired unverified record to be deleted")
	}
	if otpRepo.GetRecord("b-fresh") == nil {
		t.Error("expected fresh record to survive")
	}
	if otpRepo.GetRecord("b-verified") == nil {
		t.Error("expected verified record to survive the sweep")
	}
}

func TestOTPStats_DerivesPending(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, _, _ := newOTPFixture()
	now := time.Now()

	otpRepo.AddRecord(&domain.OTPRecord{ID: "o1", BookingID: "b1", Code: "111111", SentTime: now.Add(-time.Hour)})
	otpRepo.AddRecord(&domain.OTPRecord{ID: "o2", BookingID: "b2", Code: "222222", SentTime: now.Add(-time.Minute)})
	otpRepo.AddRecord(&domain.OTPRecord{ID: "o3", BookingID: "b3", Code: "333333", SentTime: now.Add(-time.Hour), Verified: true})

	stats, err := otpService.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if stats.Total != 3 || stats.Verified != 1 || stats.Expired != 1 || stats.Pending != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestOTPSweeper_RespectsLock(t *testing.T) {
	t.Parallel()

	otpService, otpRepo, _, _ := newOTPFixture()
	otpRepo.AddRecord(&domain.OTPRecord{ID: "o1", BookingID: "b1", Code: "111111", SentTime: time.Now().Add(-time.Hour)})

	locks := NewMockLockStore()
	locks.ForceAcquireFailure = true
	sweeper := service.NewOTPSweeper(otpService, locks, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	sweeper.Run(ctx)

	// Another instance held the lock the whole time, so nothing was swept.
	if otpRepo.GetRecord("b1") == nil {
		t.Error("expected record to survive while the lock is held elsewhere")
	}
	if locks.AcquireCallCount == 0 {
		t.Error("expected lock acquisition attempts")
	}
	if locks.ReleaseCallCount != 0 {
		t.Error("expected no release when never acquired")
	}
}
