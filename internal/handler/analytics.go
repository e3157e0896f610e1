package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// AnalyticsHandler handles HTTP requests for the reporting endpoints.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// queryRange reads the ?range= parameter; anything unrecognized widens to
// the all-time window downstream.
func queryRange(c *gin.Context) domain.AnalyticsRange {
	r := domain.AnalyticsRange(c.DefaultQuery("range", string(domain.RangeWeek)))
	return r
}

// DailyCountResponse is one per-day booking count bucket.
type DailyCountResponse struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Bookings handles GET /v1/analytics/bookings
func (h *AnalyticsHandler) Bookings(c *gin.Context) {
	counts, err := h.analyticsService.BookingAnalytics(c.Request.Context(), queryRange(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DailyCountResponse, 0, len(counts))
	for _, bucket := range counts {
		response = append(response, DailyCountResponse{
			Day:   bucket.Day.Format("2006-01-02"),
			Count: bucket.Count,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// DailyRevenueResponse is one per-day revenue bucket.
type DailyRevenueResponse struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
}

// Revenue handles GET /v1/analytics/revenue
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	revenue, err := h.analyticsService.RevenueAnalytics(c.Request.Context(), queryRange(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DailyRevenueResponse, 0, len(revenue))
	for _, bucket := range revenue {
		response = append(response, DailyRevenueResponse{
			Day:     bucket.Day.Format("2006-01-02"),
			Revenue: bucket.Revenue,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// DriverPerformanceResponse is one row of the driver leaderboard.
type DriverPerformanceResponse struct {
	DriverID      string  `json:"driver_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	Completed     int     `json:"completed"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalDistance float64 `json:"total_distance_km"`
}

// Drivers handles GET /v1/analytics/drivers
func (h *AnalyticsHandler) Drivers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	performance, err := h.analyticsService.DriverPerformance(c.Request.Context(), queryRange(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverPerformanceResponse, 0, len(performance))
	for _, row := range performance {
		response = append(response, DriverPerformanceResponse{
			DriverID:      row.DriverID,
			Name:          row.DriverName,
			Email:         row.DriverEmail,
			Completed:     row.Completed,
			TotalRevenue:  row.TotalRevenue,
			TotalDistance: row.TotalDistance,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// EmergencyCountResponse is the booking count at one emergency level.
type EmergencyCountResponse struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Emergency handles GET /v1/analytics/emergency
func (h *AnalyticsHandler) Emergency(c *gin.Context) {
	counts, err := h.analyticsService.EmergencyStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]EmergencyCountResponse, 0, len(counts))
	for _, bucket := range counts {
		response = append(response, EmergencyCountResponse{
			Level: string(bucket.Level),
			Count: bucket.Count,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// Heatmap handles GET /v1/analytics/heatmap, returning pickup points as a
// GeoJSON FeatureCollection.
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	collection, err := h.analyticsService.Heatmap(c.Request.Context(), queryRange(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, collection)
}
