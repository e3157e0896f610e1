package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Mailer delivers one-time codes to customers. Delivery is best-effort
// everywhere it is called: OTP validity depends only on the stored code and
// timestamp, never on proof of delivery.
type Mailer interface {
	// SendOTP delivers the code and returns the provider's message ID.
	SendOTP(ctx context.Context, to, code, bookingID string) (string, error)
}

// LogMailer is a development mail transport that writes the message to the
// process log instead of handing it to a provider.
type LogMailer struct{}

// NewLogMailer creates a new LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendOTP logs the outgoing message and fabricates a message ID.
func (m *LogMailer) SendOTP(ctx context.Context, to, code, bookingID string) (string, error) {
	messageID := fmt.Sprintf("log-%s", uuid.New().String())
	log.Printf("[MAIL] to=%s booking=%s otp=%s expires=%s id=%s",
		to, bookingID, code, time.Now().Add(10*time.Minute).Format(time.RFC3339), messageID)
	return messageID, nil
}
