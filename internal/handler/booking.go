package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
	otpService     *service.OTPService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, otpService *service.OTPService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		otpService:     otpService,
	}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	UserID              string   `json:"user_id"`
	EmergencyLevel      string   `json:"emergency_level"`
	PickupAddress       string   `json:"pickup_address"`
	DropAddress         string   `json:"drop_address"`
	PaymentMethod       string   `json:"payment_method,omitempty"` // cash, card, online
	BaseFare            *float64 `json:"base_fare,omitempty"`
	PerKmRate           *float64 `json:"per_km_rate,omitempty"`
	EmergencyMultiplier *float64 `json:"emergency_multiplier,omitempty"`
}

// GeoPointResponse is a coordinate pair with its source address.
type GeoPointResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// FareBreakdownResponse mirrors the parameters a fare was computed with.
type FareBreakdownResponse struct {
	BaseFare            float64 `json:"base_fare"`
	PerKmRate           float64 `json:"per_km_rate"`
	EmergencyMultiplier float64 `json:"emergency_multiplier"`
}

// EmergencyContactResponse is the customer-supplied contact person.
type EmergencyContactResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID                  string                    `json:"id"`
	UserID              string                    `json:"user_id"`
	DriverID            string                    `json:"driver_id,omitempty"`
	AmbulanceID         string                    `json:"ambulance_id,omitempty"`
	EmergencyLevel      string                    `json:"emergency_level"`
	PickupLocation      GeoPointResponse          `json:"pickup_location"`
	DropLocation        GeoPointResponse          `json:"drop_location"`
	DistanceKm          float64                   `json:"distance_km"`
	EstimatedFare       float64                   `json:"estimated_fare"`
	FinalFare           float64                   `json:"final_fare,omitempty"`
	FareBreakdown       FareBreakdownResponse     `json:"fare_breakdown"`
	OTP                 string                    `json:"otp,omitempty"`
	OTPVerified         bool                      `json:"otp_verified"`
	PaymentStatus       string                    `json:"payment_status"`
	PaymentMethod       string                    `json:"payment_method"`
	Status              string                    `json:"status"`
	Rating              int                       `json:"rating,omitempty"`
	Feedback            string                    `json:"feedback,omitempty"`
	CancellationReason  string                    `json:"cancellation_reason,omitempty"`
	IsRefunded          bool                      `json:"is_refunded"`
	CustomerNotes       string                    `json:"customer_notes,omitempty"`
	MedicalRequirements string                    `json:"medical_requirements,omitempty"`
	EmergencyContact    *EmergencyContactResponse `json:"emergency_contact,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		DriverID:       b.DriverID,
		AmbulanceID:    b.AmbulanceID,
		EmergencyLevel: string(b.EmergencyLevel),
		PickupLocation: GeoPointResponse{
			Lat:     b.PickupLocation.Lat,
			Lng:     b.PickupLocation.Lng,
			Address: b.PickupLocation.Address,
		},
		DropLocation: GeoPointResponse{
			Lat:     b.DropLocation.Lat,
			Lng:     b.DropLocation.Lng,
			Address: b.DropLocation.Address,
		},
		DistanceKm:    b.DistanceKm,
		EstimatedFare: b.EstimatedFare,
		FinalFare:     b.FinalFare,
		FareBreakdown: FareBreakdownResponse{
			BaseFare:            b.FareBreakdown.BaseFare,
			PerKmRate:           b.FareBreakdown.PerKmRate,
			EmergencyMultiplier: b.FareBreakdown.EmergencyMultiplier,
		},
		OTP:                 b.OTP,
		OTPVerified:         b.OTPVerified,
		PaymentStatus:       string(b.PaymentStatus),
		PaymentMethod:       string(b.PaymentMethod),
		Status:              string(b.Status),
		Rating:              b.Rating,
		Feedback:            b.Feedback,
		CancellationReason:  b.CancellationReason,
		IsRefunded:          b.IsRefunded,
		CustomerNotes:       b.CustomerNotes,
		MedicalRequirements: b.MedicalRequirements,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	if b.EmergencyContact.Name != "" || b.EmergencyContact.Phone != "" {
		resp.EmergencyContact = &EmergencyContactResponse{
			Name:  b.EmergencyContact.Name,
			Phone: b.EmergencyContact.Phone,
		}
	}

	return resp
}

func newBookingListResponse(bookings []*domain.Booking) []BookingResponse {
	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, newBookingResponse(b))
	}
	return response
}

// CreateBookingResponse is the HTTP response for creating a booking.
type CreateBookingResponse struct {
	Booking      BookingResponse `json:"booking"`
	OTP          string          `json:"otp"`
	OTPExpiresAt time.Time       `json:"otp_expires_at"`
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.Create(c.Request.Context(), service.CreateBookingRequest{
		UserID:         req.UserID,
		EmergencyLevel: domain.EmergencyLevel(req.EmergencyLevel),
		PickupAddress:  req.PickupAddress,
		DropAddress:    req.DropAddress,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		Overrides: service.FareOverrides{
			BaseFare:            req.BaseFare,
			PerKmRate:           req.PerKmRate,
			EmergencyMultiplier: req.EmergencyMultiplier,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateBookingResponse{
		Booking:      newBookingResponse(result.Booking),
		OTP:          result.OTPCode,
		OTPExpiresAt: result.ExpiresAt,
	})
}

// FareEstimateRequest is the HTTP request body for a fare estimate.
type FareEstimateRequest struct {
	PickupAddress       string   `json:"pickup_address"`
	DropAddress         string   `json:"drop_address"`
	EmergencyLevel      string   `json:"emergency_level"`
	BaseFare            *float64 `json:"base_fare,omitempty"`
	PerKmRate           *float64 `json:"per_km_rate,omitempty"`
	EmergencyMultiplier *float64 `json:"emergency_multiplier,omitempty"`
}

// FareEstimateResponse is the HTTP response for a fare estimate.
type FareEstimateResponse struct {
	DistanceKm    float64               `json:"distance_km"`
	EstimatedFare float64               `json:"estimated_fare"`
	FareBreakdown FareBreakdownResponse `json:"fare_breakdown"`
}

// FareEstimate handles POST /v1/bookings/fare-estimate
func (h *BookingHandler) FareEstimate(c *gin.Context) {
	var req FareEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.FareEstimate(c.Request.Context(), service.FareEstimateRequest{
		PickupAddress:  req.PickupAddress,
		DropAddress:    req.DropAddress,
		EmergencyLevel: domain.EmergencyLevel(req.EmergencyLevel),
		Overrides: service.FareOverrides{
			BaseFare:            req.BaseFare,
			PerKmRate:           req.PerKmRate,
			EmergencyMultiplier: req.EmergencyMultiplier,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, FareEstimateResponse{
		DistanceKm:    result.DistanceKm,
		EstimatedFare: result.EstimatedFare,
		FareBreakdown: FareBreakdownResponse{
			BaseFare:            result.Breakdown.BaseFare,
			PerKmRate:           result.Breakdown.PerKmRate,
			EmergencyMultiplier: result.Breakdown.EmergencyMultiplier,
		},
	})
}

// ListBookingsResponse is one page of bookings plus paging metadata.
type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// List handles GET /v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	req := service.ListBookingsRequest{
		Status:      domain.BookingStatus(c.Query("status")),
		Search:      c.Query("search"),
		PlateNumber: c.Query("plate"),
		Page:        page,
		Limit:       limit,
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from date, expected YYYY-MM-DD"})
			return
		}
		req.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to date, expected YYYY-MM-DD"})
			return
		}
		req.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	bookings, total, err := h.bookingService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	respondJSON(c, http.StatusOK, ListBookingsResponse{
		Bookings: newBookingListResponse(bookings),
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	})
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// GetUserBookings handles GET /v1/bookings/user/:userId
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetUserBookings(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingListResponse(bookings))
}

// FareHistoryResponse is one fare audit record.
type FareHistoryResponse struct {
	ID             string                `json:"id"`
	CalculatedBy   string                `json:"calculated_by,omitempty"`
	DistanceKm     float64               `json:"distance_km"`
	EmergencyLevel string                `json:"emergency_level"`
	FareBreakdown  FareBreakdownResponse `json:"fare_breakdown"`
	EstimatedFare  float64               `json:"estimated_fare"`
	FinalFare      float64               `json:"final_fare,omitempty"`
	OverrideReason string                `json:"override_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// BookingSummaryResponse is a booking joined with its fare audit trail.
type BookingSummaryResponse struct {
	Booking     BookingResponse       `json:"booking"`
	FareHistory []FareHistoryResponse `json:"fare_history"`
}

// Summary handles GET /v1/bookings/:id/summary
func (h *BookingHandler) Summary(c *gin.Context) {
	summary, err := h.bookingService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]FareHistoryResponse, 0, len(summary.FareHistory))
	for _, rec := range summary.FareHistory {
		history = append(history, FareHistoryResponse{
			ID:             rec.ID,
			CalculatedBy:   rec.CalculatedBy,
			DistanceKm:     rec.DistanceKm,
			EmergencyLevel: string(rec.EmergencyLevel),
			FareBreakdown: FareBreakdownResponse{
				BaseFare:            rec.Breakdown.BaseFare,
				PerKmRate:           rec.Breakdown.PerKmRate,
				EmergencyMultiplier: rec.Breakdown.EmergencyMultiplier,
			},
			EstimatedFare:  rec.EstimatedFare,
			FinalFare:      rec.FinalFare,
			OverrideReason: rec.OverrideReason,
			CreatedAt:      rec.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, BookingSummaryResponse{
		Booking:     newBookingResponse(summary.Booking),
		FareHistory: history,
	})
}

// AdminUpdateRequest is the HTTP request body for operator mutations.
type AdminUpdateRequest struct {
	OTP            string   `json:"otp,omitempty"`
	Status         string   `json:"status,omitempty"`
	DriverID       string   `json:"driver_id,omitempty"`
	AmbulanceID    string   `json:"ambulance_id,omitempty"`
	RegenerateOTP  bool     `json:"regenerate_otp,omitempty"`
	FinalFare      *float64 `json:"final_fare,omitempty"`
	OverrideReason string   `json:"override_reason,omitempty"`
}

// AdminUpdate handles PATCH /v1/bookings/:id/admin
func (h *BookingHandler) AdminUpdate(c *gin.Context) {
	var req AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.AdminUpdate(c.Request.Context(), c.Param("id"), service.AdminUpdateRequest{
		OTP:            req.OTP,
		Status:         domain.BookingStatus(req.Status),
		DriverID:       req.DriverID,
		AmbulanceID:    req.AmbulanceID,
		RegenerateOTP:  req.RegenerateOTP,
		FinalFare:      req.FinalFare,
		OverrideReason: req.OverrideReason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Cancel handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req CancelBookingRequest
	// An empty body means no reason was given.
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// FeedbackRequest is the HTTP request body for post-completion feedback.
type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback,omitempty"`
}

// AddFeedback handles PATCH /v1/bookings/:id/feedback
func (h *BookingHandler) AddFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.AddFeedback(c.Request.Context(), c.Param("id"), req.Rating, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// UpdateDetailsRequest is the HTTP request body for customer detail edits.
type UpdateDetailsRequest struct {
	CustomerNotes       *string                   `json:"customer_notes,omitempty"`
	MedicalRequirements *string                   `json:"medical_requirements,omitempty"`
	EmergencyContact    *EmergencyContactResponse `json:"emergency_contact,omitempty"`
}

// UpdateDetails handles PATCH /v1/bookings/:id/details
func (h *BookingHandler) UpdateDetails(c *gin.Context) {
	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := service.UpdateDetailsRequest{
		CustomerNotes:       req.CustomerNotes,
		MedicalRequirements: req.MedicalRequirements,
	}
	if req.EmergencyContact != nil {
		update.EmergencyContact = &domain.EmergencyContact{
			Name:  req.EmergencyContact.Name,
			Phone: req.EmergencyContact.Phone,
		}
	}

	booking, err := h.bookingService.UpdateDetails(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// BookingStatsResponse combines booking and OTP counters.
type BookingStatsResponse struct {
	Bookings *service.BookingStats `json:"bookings"`
	OTPs     *service.OTPStats     `json:"otps"`
}

// Stats handles GET /v1/bookings/stats
func (h *BookingHandler) Stats(c *gin.Context) {
	bookingStats, err := h.bookingService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	otpStats, err := h.otpService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BookingStatsResponse{
		Bookings: bookingStats,
		OTPs:     otpStats,
	})
}
