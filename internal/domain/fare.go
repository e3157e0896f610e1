package domain

import "time"

// FareBreakdown is the triple of inputs used to derive a fare estimate.
// It is retained on the booking and in fare history for audit.
type FareBreakdown struct {
	BaseFare            float64
	PerKmRate           float64
	EmergencyMultiplier float64
}

// FareHistory is one append-only audit record per fare calculation or
// override event. Records are never mutated or deleted.
type FareHistory struct {
	ID             string
	BookingID      string // empty for pure estimates with no booking yet
	CalculatedBy   string
	DistanceKm     float64
	EmergencyLevel EmergencyLevel
	Breakdown      FareBreakdown
	EstimatedFare  float64
	FinalFare      float64 // 0 unless an override event
	OverrideReason string
	CreatedAt      time.Time
}
