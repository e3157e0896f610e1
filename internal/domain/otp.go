package domain

import "time"

// OTP validity and cleanup windows. The expiry is checked lazily at
// verification time; the retention window is the cleanup safety buffer.
const (
	OTPExpiry    = 10 * time.Minute
	OTPRetention = 15 * time.Minute
)

// OTPRecord is the one-time code bound 1:1 to a booking. Re-issuance
// overwrites the record in place rather than inserting a duplicate.
type OTPRecord struct {
	ID         string
	BookingID  string
	Code       string
	SentTime   time.Time
	Verified   bool
	VerifiedAt time.Time

	// Email delivery metadata. Delivery never gates verification.
	EmailSent       bool
	EmailSentAt     time.Time
	EmailMessageID  string
	EmailError      string
	EmailRetryCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the code is past its validity window at now.
func (o *OTPRecord) IsExpired(now time.Time) bool {
	return now.Sub(o.SentTime) > OTPExpiry
}

// IsValid reports whether the code can still be verified at now.
func (o *OTPRecord) IsValid(now time.Time) bool {
	return !o.Verified && !o.IsExpired(now)
}
