package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// OTPStats is the consistency snapshot returned by Stats. The counts come
// from independent queries, so they can drift slightly under concurrent
// writes; pending is derived from the other three.
type OTPStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Expired  int `json:"expired"`
	Pending  int `json:"pending"`
}

// OTPService issues, verifies and retires one-time codes bound 1:1 to
// bookings.
type OTPService struct {
	otpRepo     repository.OTPRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	mailer      Mailer
	now         func() time.Time
}

// NewOTPService creates a new OTPService.
func NewOTPService(
	otpRepo repository.OTPRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
) *OTPService {
	return &OTPService{
		otpRepo:     otpRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		now:         time.Now,
	}
}

// generateCode returns a uniform random 6-digit numeric code.
func generateCode() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// Issue creates the OTP for a booking, or overwrites the existing record in
// place (new code, fresh sent time, verified cleared). The booking's otp
// mirror field is refreshed as well. Regeneration after expiry goes through
// the same path.
func (s *OTPService) Issue(ctx context.Context, bookingID string) (*domain.OTPRecord, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	record, err := s.otpRepo.GetByBookingID(ctx, bookingID)
	switch {
	case err == nil:
		record.Code = generateCode()
		record.SentTime = now
		record.Verified = false
		record.VerifiedAt = time.Time{}
		if err := s.otpRepo.Update(ctx, record); err != nil {
			return nil, err
		}
	case errors.Is(err, repository.ErrNotFound):
		record = &domain.OTPRecord{
			ID:        uuid.New().String(),
			BookingID: bookingID,
			Code:      generateCode(),
			SentTime:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.otpRepo.Upsert(ctx, record); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	booking.OTP = record.Code
	booking.OTPVerified = false
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return record, nil
}

// Verify checks the code for a booking. It returns false when no unverified
// record matches the exact code or the record is past its 10-minute window.
// Verification is single-use: a verified record can never verify again. On
// success the booking's otpVerified flag is set.
func (s *OTPService) Verify(ctx context.Context, bookingID, code string) (bool, error) {
	if bookingID == "" || code == "" {
		return false, nil
	}

	record, err := s.otpRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if record.Verified || record.Code != code {
		return false, nil
	}
	if record.IsExpired(s.now()) {
		return false, nil
	}

	// Load the booking before consuming the code so a missing booking does
	// not burn the single use. The record update commits the verification;
	// a mirror write failure after that leaves the booking flag stale, not
	// the code reusable.
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	record.Verified = true
	record.VerifiedAt = s.now()
	if err := s.otpRepo.Update(ctx, record); err != nil {
		return false, err
	}

	booking.OTPVerified = true
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return false, err
	}

	return true, nil
}

// Get returns the OTP record for a booking.
func (s *OTPService) Get(ctx context.Context, bookingID string) (*domain.OTPRecord, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.otpRepo.GetByBookingID(ctx, bookingID)
}

// List returns a page of OTP records matching the filter plus the total.
func (s *OTPService) List(ctx context.Context, filter repository.OTPFilter) ([]*domain.OTPRecord, int, error) {
	return s.otpRepo.List(ctx, filter)
}

// SendEmail delivers the booking's current code to the owning user,
// recording delivery metadata on the record. A transport failure is recorded
// and returned but never invalidates the code.
func (s *OTPService) SendEmail(ctx context.Context, bookingID string) error {
	record, err := s.otpRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		return err
	}

	messageID, sendErr := s.mailer.SendOTP(ctx, user.Email, record.Code, bookingID)
	if sendErr != nil {
		record.EmailError = sendErr.Error()
		record.EmailRetryCount++
	} else {
		record.EmailSent = true
		record.EmailSentAt = s.now()
		record.EmailMessageID = messageID
		record.EmailError = ""
	}

	if err := s.otpRepo.Update(ctx, record); err != nil {
		return err
	}
	return sendErr
}

// Resend re-sends the current code without generating a new one. It fails
// when the code is already past its validity window.
func (s *OTPService) Resend(ctx context.Context, bookingID string) error {
	record, err := s.otpRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}

	if record.IsExpired(s.now()) {
		return ErrOTPExpired
	}

	return s.SendEmail(ctx, bookingID)
}

// CleanupExpired bulk-deletes all unverified records older than the validity
// window and returns the count removed. The storage retention window is a
// backstop; this sweep is the primary cleanup path.
func (s *OTPService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-domain.OTPExpiry)
	return s.otpRepo.DeleteExpired(ctx, cutoff)
}

// Stats returns OTP counts. Each count is an independent query; the result
// is not an atomic snapshot.
func (s *OTPService) Stats(ctx context.Context) (*OTPStats, error) {
	total, err := s.otpRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	verified, err := s.otpRepo.CountVerified(ctx)
	if err != nil {
		return nil, err
	}

	expired, err := s.otpRepo.CountExpired(ctx, s.now().Add(-domain.OTPExpiry))
	if err != nil {
		return nil, err
	}

	return &OTPStats{
		Total:    total,
		Verified: verified,
		Expired:  expired,
		Pending:  total - verified - expired,
	}, nil
}
