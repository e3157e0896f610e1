package service

import (
	"context"
	"math"
	"testing"

	"dispatch/internal/domain"
)

type fakeHistoryRepo struct {
	records   []*domain.FareHistory
	createErr error
}

func (f *fakeHistoryRepo) Create(ctx context.Context, record *domain.FareHistory) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistoryRepo) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.FareHistory, error) {
	result := make([]*domain.FareHistory, 0)
	for _, r := range f.records {
		if r.BookingID == bookingID {
			result = append(result, r)
		}
	}
	return result, nil
}

func floatPtr(v float64) *float64 { return &v }

func TestComputeFare(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    FareInput
		expected float64
	}{
		{
			name:     "medium emergency 10km",
			input:    FareInput{DistanceKm: 10, EmergencyLevel: domain.EmergencyMedium},
			expected: 520.00, // (150 + 25*10) * 1.3
		},
		{
			name:     "low emergency no multiplier",
			input:    FareInput{DistanceKm: 10, EmergencyLevel: domain.EmergencyLow},
			expected: 400.00,
		},
		{
			name:     "critical emergency",
			input:    FareInput{DistanceKm: 4, EmergencyLevel: domain.EmergencyCritical},
			expected: 425.00, // (150 + 100) * 1.7
		},
		{
			name:     "unknown level falls back to multiplier 1",
			input:    FareInput{DistanceKm: 10, EmergencyLevel: "High"},
			expected: 400.00,
		},
		{
			name:     "negative distance clamps to zero",
			input:    FareInput{DistanceKm: -3, EmergencyLevel: domain.EmergencyLow},
			expected: 150.00,
		},
		{
			name: "overrides replace defaults",
			input: FareInput{
				DistanceKm:     10,
				EmergencyLevel: domain.EmergencyMedium,
				Overrides: FareOverrides{
					BaseFare:            floatPtr(200),
					PerKmRate:           floatPtr(30),
					EmergencyMultiplier: floatPtr(2),
				},
			},
			expected: 1000.00, // (200 + 300) * 2
		},
		{
			name:     "fractional result rounds to cents",
			input:    FareInput{DistanceKm: 0.5, EmergencyLevel: domain.EmergencyMedium},
			expected: 211.25, // (150 + 12.5) * 1.3 = 211.25
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := &fakeHistoryRepo{}
			fareService := NewFareService(repo)

			result, err := fareService.Compute(context.Background(), tc.input)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if result.EstimatedFare != tc.expected {
				t.Errorf("expected fare %.2f, got %.2f", tc.expected, result.EstimatedFare)
			}
			if len(repo.records) != 1 {
				t.Errorf("expected 1 history record, got %d", len(repo.records))
			}
		})
	}
}

func TestComputeFare_HistoryWriteFailureFailsCompute(t *testing.T) {
	t.Parallel()

	repo := &fakeHistoryRepo{createErr: context.DeadlineExceeded}
	fareService := NewFareService(repo)

	_, err := fareService.Compute(context.Background(), FareInput{DistanceKm: 5, EmergencyLevel: domain.EmergencyLow})
	if err == nil {
		t.Fatal("expected compute to fail when the audit write fails")
	}
}

func TestBookingDistance(t *testing.T) {
	t.Parallel()

	t.Run("same point floors to minimum", func(t *testing.T) {
		t.Parallel()
		if d := bookingDistanceKm(12.97, 77.59, 12.97, 77.59); d != 0.5 {
			t.Errorf("expected floor of 0.5, got %f", d)
		}
	})

	t.Run("short hop floors to minimum", func(t *testing.T) {
		t.Parallel()
		// Roughly 110 m apart.
		if d := bookingDistanceKm(12.9700, 77.5900, 12.9710, 77.5900); d != 0.5 {
			t.Errorf("expected floor of 0.5, got %f", d)
		}
	})

	t.Run("long distance rounds to two decimals", func(t *testing.T) {
		t.Parallel()
		d := bookingDistanceKm(12.9716, 77.5946, 13.0600, 77.5900)
		if d <= 0.5 {
			t.Fatalf("expected a real distance, got %f", d)
		}
		if math.Round(d*100)/100 != d {
			t.Errorf("expected two-decimal distance, got %f", d)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		t.Parallel()
		d := haversineKm(0, 0, 1, 0)
		if d < 111 || d > 112 {
			t.Errorf("expected about 111.2 km, got %f", d)
		}
	})
}
