package domain

import "time"

// AmbulanceStatus represents the current status of an ambulance.
type AmbulanceStatus string

const (
	AmbulanceStatusAvailable AmbulanceStatus = "available"
	AmbulanceStatusBusy      AmbulanceStatus = "busy"
	AmbulanceStatusOffline   AmbulanceStatus = "offline"
)

// ValidAmbulanceStatus reports whether s is a known ambulance status.
func ValidAmbulanceStatus(s AmbulanceStatus) bool {
	switch s {
	case AmbulanceStatusAvailable, AmbulanceStatusBusy, AmbulanceStatusOffline:
		return true
	}
	return false
}

// Ambulance represents a vehicle in the fleet. CurrentLat/CurrentLng hold the
// last position reported by the assigned driver; the coordinate write is the
// unit of atomicity, no locking is applied.
type Ambulance struct {
	ID          string
	DriverID    string
	PlateNumber string
	Status      AmbulanceStatus
	CurrentLat  float64
	CurrentLng  float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
