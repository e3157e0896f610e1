package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// AmbulanceHandler handles HTTP requests for the ambulance fleet.
type AmbulanceHandler struct {
	ambulanceService *service.AmbulanceService
}

// NewAmbulanceHandler creates a new AmbulanceHandler.
func NewAmbulanceHandler(ambulanceService *service.AmbulanceService) *AmbulanceHandler {
	return &AmbulanceHandler{ambulanceService: ambulanceService}
}

// RegisterAmbulanceRequest is the HTTP request body for fleet registration.
type RegisterAmbulanceRequest struct {
	DriverID    string  `json:"driver_id,omitempty"`
	PlateNumber string  `json:"plate_number"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
}

// AmbulanceResponse is the HTTP representation of an ambulance.
type AmbulanceResponse struct {
	ID          string    `json:"id"`
	DriverID    string    `json:"driver_id,omitempty"`
	PlateNumber string    `json:"plate_number"`
	Status      string    `json:"status"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newAmbulanceResponse(a *domain.Ambulance) AmbulanceResponse {
	return AmbulanceResponse{
		ID:          a.ID,
		DriverID:    a.DriverID,
		PlateNumber: a.PlateNumber,
		Status:      string(a.Status),
		Lat:         a.CurrentLat,
		Lng:         a.CurrentLng,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// Register handles POST /v1/ambulances
func (h *AmbulanceHandler) Register(c *gin.Context) {
	var req RegisterAmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ambulance, err := h.ambulanceService.Register(c.Request.Context(), service.RegisterAmbulanceRequest{
		DriverID:    req.DriverID,
		PlateNumber: req.PlateNumber,
		Lat:         req.Lat,
		Lng:         req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, newAmbulanceResponse(ambulance))
}

// List handles GET /v1/ambulances
func (h *AmbulanceHandler) List(c *gin.Context) {
	ambulances, err := h.ambulanceService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]AmbulanceResponse, 0, len(ambulances))
	for _, a := range ambulances {
		response = append(response, newAmbulanceResponse(a))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/ambulances/:id
func (h *AmbulanceHandler) Get(c *gin.Context) {
	ambulance, err := h.ambulanceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newAmbulanceResponse(ambulance))
}

// UpdateStatusRequest is the HTTP request body for an availability change.
type UpdateStatusRequest struct {
	Status string `json:"status"` // available, busy, offline
}

// UpdateStatus handles PATCH /v1/ambulances/:id/status
func (h *AmbulanceHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ambulance, err := h.ambulanceService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.AmbulanceStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newAmbulanceResponse(ambulance))
}

// NearbyAmbulanceResponse is an ambulance with its distance from the query
// point.
type NearbyAmbulanceResponse struct {
	Ambulance  AmbulanceResponse `json:"ambulance"`
	DistanceKm float64           `json:"distance_km"`
}

// Nearest handles GET /v1/ambulances/nearest?lat=..&lng=..&radius_km=..
func (h *AmbulanceHandler) Nearest(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng query parameters are required"})
		return
	}
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km"), 64)

	nearby, err := h.ambulanceService.Nearest(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyAmbulanceResponse, 0, len(nearby))
	for _, n := range nearby {
		response = append(response, NearbyAmbulanceResponse{
			Ambulance:  newAmbulanceResponse(n.Ambulance),
			DistanceKm: n.DistanceKm,
		})
	}
	respondJSON(c, http.StatusOK, response)
}
