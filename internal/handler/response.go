package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var transitionErr *service.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusConflict
	}

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Uniqueness violations
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidAmbulanceID),
		errors.Is(err, service.ErrInvalidEmergencyLevel),
		errors.Is(err, service.ErrInvalidAmbulanceStatus),
		errors.Is(err, service.ErrInvalidPlateNumber),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidCoordinates),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrGeocodeFailed):
		return http.StatusBadRequest

	// Conflict errors - the booking or code is in the wrong state
	case errors.Is(err, service.ErrAmbulanceBusy),
		errors.Is(err, service.ErrBookingCompleted),
		errors.Is(err, service.ErrBookingNotCompleted),
		errors.Is(err, service.ErrBookingNotPending),
		errors.Is(err, service.ErrOTPExpired):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
