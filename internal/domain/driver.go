package domain

import "time"

// DriverStatus represents the duty status of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// Driver is an identity record owned by the external identity collaborator.
// It is consumed here for references and display joins only.
type Driver struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    DriverStatus
	CreatedAt time.Time
}
