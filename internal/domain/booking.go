package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAssigned  BookingStatus = "assigned"
	BookingStatusEnroute   BookingStatus = "enroute"
	BookingStatusArrived   BookingStatus = "arrived"
	BookingStatusInTransit BookingStatus = "in_transit"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// allowedTransitions is the booking status adjacency map. Terminal states
// have an empty set.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusAssigned:  {BookingStatusEnroute, BookingStatusCancelled},
	BookingStatusEnroute:   {BookingStatusArrived, BookingStatusCancelled},
	BookingStatusArrived:   {BookingStatusInTransit, BookingStatusCancelled},
	BookingStatusInTransit: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// CanTransition reports whether a booking may move from its current status
// to the target status.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// ValidBookingStatus reports whether s is one of the seven known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// EmergencyLevel classifies the urgency of a booking.
type EmergencyLevel string

const (
	EmergencyLow      EmergencyLevel = "Low"
	EmergencyMedium   EmergencyLevel = "Medium"
	EmergencyCritical EmergencyLevel = "Critical"
)

// ValidEmergencyLevel reports whether lvl is a known emergency level.
// Some front-end forms historically offered "High"; it is not a valid level.
func ValidEmergencyLevel(lvl EmergencyLevel) bool {
	switch lvl {
	case EmergencyLow, EmergencyMedium, EmergencyCritical:
		return true
	}
	return false
}

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod represents how a booking is paid.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodOnline PaymentMethod = "online"
)

// GeoPoint is a WGS84 coordinate pair with an optional formatted address.
type GeoPoint struct {
	Lat     float64
	Lng     float64
	Address string
}

// EmergencyContact is the contact person supplied by the customer.
type EmergencyContact struct {
	Name  string
	Phone string
}

// Booking represents an ambulance booking request.
type Booking struct {
	ID             string
	UserID         string
	DriverID       string
	AmbulanceID    string
	EmergencyLevel EmergencyLevel

	PickupLocation GeoPoint
	DropLocation   GeoPoint
	DistanceKm     float64

	EstimatedFare float64
	FinalFare     float64 // admin override, 0 when unset
	FareBreakdown FareBreakdown

	OTP         string
	OTPVerified bool

	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod

	Status BookingStatus

	Rating              int // 1-5, 0 when unset
	Feedback            string
	CancellationReason  string
	IsRefunded          bool
	CustomerNotes       string
	MedicalRequirements string
	EmergencyContact    EmergencyContact

	CreatedAt time.Time
	UpdatedAt time.Time
}
