package service

import (
	"context"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// defaultTopDriverLimit caps the driver leaderboard when no limit is given.
const defaultTopDriverLimit = 20

// AnalyticsService answers aggregate questions over booking history. Every
// query is read-only and windowed by a named range.
type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo, now: time.Now}
}

// window resolves a named range to a [from, to] pair in server-local time.
// "day" is the start of today, "week" starts on the most recent Monday,
// "month" is the first of the current month, "all" and anything
// unrecognized open the window completely.
func (s *AnalyticsService) window(r domain.AnalyticsRange) (time.Time, time.Time) {
	now := s.now()

	switch r {
	case domain.RangeDay:
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, now
	case domain.RangeWeek:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		monday := now.AddDate(0, 0, -daysSinceMonday)
		from := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
		return from, now
	case domain.RangeMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, now
	default:
		return time.Time{}, now
	}
}

// BookingAnalytics returns per-day booking counts for the range.
func (s *AnalyticsService) BookingAnalytics(ctx context.Context, r domain.AnalyticsRange) ([]domain.DailyCount, error) {
	from, to := s.window(r)
	return s.analyticsRepo.BookingsPerDay(ctx, from, to)
}

// RevenueAnalytics returns per-day paid revenue for the range.
func (s *AnalyticsService) RevenueAnalytics(ctx context.Context, r domain.AnalyticsRange) ([]domain.DailyRevenue, error) {
	from, to := s.window(r)
	return s.analyticsRepo.RevenuePerDay(ctx, from, to)
}

// DriverPerformance ranks drivers by completed bookings within the range.
func (s *AnalyticsService) DriverPerformance(ctx context.Context, r domain.AnalyticsRange, limit int) ([]domain.DriverPerformance, error) {
	if limit <= 0 {
		limit = defaultTopDriverLimit
	}
	from, to := s.window(r)
	return s.analyticsRepo.TopDrivers(ctx, from, to, limit)
}

// EmergencyStats returns the booking count per emergency level over all
// time.
func (s *AnalyticsService) EmergencyStats(ctx context.Context) ([]domain.EmergencyCount, error) {
	return s.analyticsRepo.EmergencyCounts(ctx)
}

// HeatmapFeature is one pickup point in GeoJSON form.
type HeatmapFeature struct {
	Type       string                 `json:"type"`
	Geometry   HeatmapGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// HeatmapGeometry is a GeoJSON Point geometry.
type HeatmapGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// HeatmapCollection is a GeoJSON FeatureCollection of pickup points.
type HeatmapCollection struct {
	Type     string           `json:"type"`
	Features []HeatmapFeature `json:"features"`
}

// Heatmap returns pickup locations for the range as a GeoJSON
// FeatureCollection, coordinates in [lng, lat] order.
func (s *AnalyticsService) Heatmap(ctx context.Context, r domain.AnalyticsRange) (*HeatmapCollection, error) {
	from, to := s.window(r)

	points, err := s.analyticsRepo.PickupPoints(ctx, from, to)
	if err != nil {
		return nil, err
	}

	features := make([]HeatmapFeature, 0, len(points))
	for _, p := range points {
		features = append(features, HeatmapFeature{
			Type: "Feature",
			Geometry: HeatmapGeometry{
				Type:        "Point",
				Coordinates: []float64{p.Lng, p.Lat},
			},
			Properties: map[string]interface{}{
				"status":         p.Status,
				"emergencyLevel": p.EmergencyLevel,
			},
		})
	}

	return &HeatmapCollection{Type: "FeatureCollection", Features: features}, nil
}
