package domain

import "time"

// AnalyticsRange selects the reporting window: since the start of the
// current calendar day/week/month through now, or everything.
type AnalyticsRange string

const (
	RangeDay   AnalyticsRange = "day"
	RangeWeek  AnalyticsRange = "week"
	RangeMonth AnalyticsRange = "month"
	RangeAll   AnalyticsRange = "all"
)

// DailyCount is one per-day bucket of booking counts.
type DailyCount struct {
	Day   time.Time
	Count int
}

// DailyRevenue is one per-day bucket of paid revenue. Revenue uses the final
// fare when set, else the estimate.
type DailyRevenue struct {
	Day     time.Time
	Revenue float64
}

// DriverPerformance summarises completed bookings per driver in a window.
type DriverPerformance struct {
	DriverID      string
	DriverName    string
	DriverEmail   string
	Completed     int
	TotalRevenue  float64
	TotalDistance float64
}

// EmergencyCount is the number of bookings at one emergency level.
type EmergencyCount struct {
	Level EmergencyLevel
	Count int
}

// PickupPoint is one pickup coordinate with display properties, emitted as a
// GeoJSON feature for heatmapping.
type PickupPoint struct {
	Lat            float64
	Lng            float64
	Status         BookingStatus
	EmergencyLevel EmergencyLevel
}
