package domain

import "time"

// User is a customer identity record owned by the external identity
// collaborator; consumed here for booking ownership and email lookups.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
