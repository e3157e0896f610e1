package tests

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// 5. ANALYTICS WINDOWS AND HEATMAP
// ──────────────────────────────────────────────

// captureAnalyticsRepository records the window each query was given and
// returns canned data.
type captureAnalyticsRepository struct {
	From time.Time
	To   time.Time

	Points []domain.PickupPoint
}

func (r *captureAnalyticsRepository) BookingsPerDay(ctx context.Context, from, to time.Time) ([]domain.DailyCount, error) {
	r.From, r.To = from, to
	return []domain.DailyCount{}, nil
}

func (r *captureAnalyticsRepository) RevenuePerDay(ctx context.Context, from, to time.Time) ([]domain.DailyRevenue, error) {
	r.From, r.To = from, to
	return []domain.DailyRevenue{}, nil
}

func (r *captureAnalyticsRepository) TopDrivers(ctx context.Context, from, to time.Time, limit int) ([]domain.DriverPerformance, error) {
	r.From, r.To = from, to
	return []domain.DriverPerformance{}, nil
}

func (r *captureAnalyticsRepository) EmergencyCounts(ctx context.Context) ([]domain.EmergencyCount, error) {
	return []domain.EmergencyCount{}, nil
}

func (r *captureAnalyticsRepository) PickupPoints(ctx context.Context, from, to time.Time) ([]domain.PickupPoint, error) {
	r.From, r.To = from, to
	return r.Points, nil
}

func TestAnalyticsWindows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("day starts at local midnight", func(t *testing.T) {
		t.Parallel()

		repo := &captureAnalyticsRepository{}
		analyticsService := service.NewAnalyticsService(repo)

		if _, err := analyticsService.BookingAnalytics(ctx, domain.RangeDay); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		now := time.Now()
		wantFrom := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if !repo.From.Equal(wantFrom) {
			t.Errorf("expected window start %s, got %s", wantFrom, repo.From)
		}
	})

	t.Run("week starts on Monday", func(t *testing.T) {
		t.Parallel()

		repo := &captureAnalyticsRepository{}
		analyticsService := service.NewAnalyticsService(repo)

		if _, err := analyticsService.RevenueAnalytics(ctx, domain.RangeWeek); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if repo.From.Weekday() != time.Monday {
			t.Errorf("expected Monday window start, got %s", repo.From.Weekday())
		}
		if repo.From.Hour() != 0 || repo.From.Minute() != 0 {
			t.Errorf("expected midnight window start, got %s", repo.From)
		}
		if repo.From.After(time.Now()) {
			t.Error("expected window start in the past")
		}
	})

	t.Run("month starts on the first", func(t *testing.T) {
		t.Parallel()

		repo := &captureAnalyticsRepository{}
		analyticsService := service.NewAnalyticsService(repo)

		if _, err := analyticsService.BookingAnalytics(ctx, domain.RangeMonth); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if repo.From.Day() != 1 {
			t.Errorf("expected window to start on day 1, got day %d", repo.From.Day())
		}
	})

	t.Run("all and unknown ranges are unbounded", func(t *testing.T) {
		t.Parallel()

		for _, r := range []domain.AnalyticsRange{domain.RangeAll, "fortnight"} {
			repo := &captureAnalyticsRepository{}
			analyticsService := service.NewAnalyticsService(repo)

			if _, err := analyticsService.BookingAnalytics(ctx, r); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if !repo.From.IsZero() {
				t.Errorf("range %q: expected zero window start, got %s", r, repo.From)
			}
		}
	})
}

func TestHeatmap_EmitsGeoJSON(t *testing.T) {
	t.Parallel()

	repo := &captureAnalyticsRepository{
		Points: []domain.PickupPoint{
			{Lat: 12.97, Lng: 77.59, Status: domain.BookingStatusCompleted, EmergencyLevel: domain.EmergencyCritical},
			{Lat: 13.01, Lng: 77.62, Status: domain.BookingStatusPending, EmergencyLevel: domain.EmergencyLow},
		},
	}
	analyticsService := service.NewAnalyticsService(repo)

	collection, err := analyticsService.Heatmap(context.Background(), domain.RangeAll)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if collection.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %q", collection.Type)
	}
	if len(collection.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(collection.Features))
	}

	first := collection.Features[0]
	if first.Type != "Feature" || first.Geometry.Type != "Point" {
		t.Errorf("unexpected feature shape: %+v", first)
	}
	// GeoJSON order is [lng, lat].
	if first.Geometry.Coordinates[0] != 77.59 || first.Geometry.Coordinates[1] != 12.97 {
		t.Errorf("expected [lng, lat] coordinates, got %v", first.Geometry.Coordinates)
	}
	if first.Properties["emergencyLevel"] != domain.EmergencyCritical {
		t.Errorf("expected emergency level property, got %v", first.Properties["emergencyLevel"])
	}
}
