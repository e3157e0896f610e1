package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// OTPHandler handles HTTP requests for one-time codes.
type OTPHandler struct {
	otpService *service.OTPService
}

// NewOTPHandler creates a new OTPHandler.
func NewOTPHandler(otpService *service.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// OTPRequest is the HTTP request body naming the target booking.
type OTPRequest struct {
	BookingID string `json:"booking_id"`
}

// VerifyOTPRequest is the HTTP request body for code verification.
type VerifyOTPRequest struct {
	BookingID string `json:"booking_id"`
	OTP       string `json:"otp"`
}

// OTPResponse is the HTTP representation of an OTP record. The code itself
// is included; these endpoints sit behind the operator surface.
type OTPResponse struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"booking_id"`
	OTP             string    `json:"otp"`
	SentTime        time.Time `json:"sent_time"`
	ExpiresAt       time.Time `json:"expires_at"`
	Verified        bool      `json:"verified"`
	VerifiedAt      string    `json:"verified_at,omitempty"`
	EmailSent       bool      `json:"email_sent"`
	EmailSentAt     string    `json:"email_sent_at,omitempty"`
	EmailMessageID  string    `json:"email_message_id,omitempty"`
	EmailError      string    `json:"email_error,omitempty"`
	EmailRetryCount int       `json:"email_retry_count,omitempty"`
}

func newOTPResponse(rec *domain.OTPRecord) OTPResponse {
	resp := OTPResponse{
		ID:              rec.ID,
		BookingID:       rec.BookingID,
		OTP:             rec.Code,
		SentTime:        rec.SentTime,
		ExpiresAt:       rec.SentTime.Add(domain.OTPExpiry),
		Verified:        rec.Verified,
		EmailSent:       rec.EmailSent,
		EmailMessageID:  rec.EmailMessageID,
		EmailError:      rec.EmailError,
		EmailRetryCount: rec.EmailRetryCount,
	}

	if !rec.VerifiedAt.IsZero() {
		resp.VerifiedAt = rec.VerifiedAt.Format(time.RFC3339)
	}
	if !rec.EmailSentAt.IsZero() {
		resp.EmailSentAt = rec.EmailSentAt.Format(time.RFC3339)
	}

	return resp
}

// Generate handles POST /v1/otp/generate. Issuing for a booking that already
// has a code overwrites it in place; regeneration is the same operation.
func (h *OTPHandler) Generate(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	record, err := h.otpService.Issue(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, newOTPResponse(record))
}

// VerifyOTPResponse reports the outcome of a verification attempt.
type VerifyOTPResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// Verify handles POST /v1/otp/verify. A wrong, expired or already-used code
// is a negative result, not an error.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	verified, err := h.otpService.Verify(c.Request.Context(), req.BookingID, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := VerifyOTPResponse{Verified: verified, Message: "OTP verified successfully"}
	if !verified {
		resp.Message = "Invalid or expired OTP"
	}
	respondJSON(c, http.StatusOK, resp)
}

// Resend handles POST /v1/otp/resend. The current code is re-sent unchanged;
// an expired code must be regenerated instead.
func (h *OTPHandler) Resend(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.otpService.Resend(c.Request.Context(), req.BookingID); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"message": "OTP resent"})
}

// CleanupResponse reports how many expired records a sweep removed.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}

// Cleanup handles POST /v1/otp/cleanup, an on-demand trigger for the same
// sweep the background sweeper runs.
func (h *OTPHandler) Cleanup(c *gin.Context) {
	deleted, err := h.otpService.CleanupExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, CleanupResponse{Deleted: deleted})
}

// Stats handles GET /v1/otp/stats/overview
func (h *OTPHandler) Stats(c *gin.Context) {
	stats, err := h.otpService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, stats)
}

// ListOTPResponse is one page of OTP records plus the total match count.
type ListOTPResponse struct {
	OTPs  []OTPResponse `json:"otps"`
	Total int           `json:"total"`
}

// List handles GET /v1/otp/list with optional verified/expired filters.
func (h *OTPHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filter := repository.OTPFilter{Page: page, Limit: limit}

	if v := c.Query("verified"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid verified filter"})
			return
		}
		filter.Verified = &parsed
	}
	if v := c.Query("expired"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expired filter"})
			return
		}
		filter.Expired = &parsed
	}

	records, total, err := h.otpService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]OTPResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, newOTPResponse(rec))
	}
	respondJSON(c, http.StatusOK, ListOTPResponse{OTPs: response, Total: total})
}

// Get handles GET /v1/otp/:bookingId
func (h *OTPHandler) Get(c *gin.Context) {
	record, err := h.otpService.Get(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newOTPResponse(record))
}
