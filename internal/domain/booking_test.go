package domain

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	happyPath := []BookingStatus{
		BookingStatusPending,
		BookingStatusAssigned,
		BookingStatusEnroute,
		BookingStatusArrived,
		BookingStatusInTransit,
		BookingStatusCompleted,
	}

	for i := 0; i < len(happyPath)-1; i++ {
		if !happyPath[i].CanTransition(happyPath[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", happyPath[i], happyPath[i+1])
		}
	}

	// Skipping a step is never allowed.
	for i := 0; i < len(happyPath)-2; i++ {
		if happyPath[i].CanTransition(happyPath[i+2]) {
			t.Errorf("expected %s -> %s to be rejected", happyPath[i], happyPath[i+2])
		}
	}

	// Every non-terminal status can cancel.
	for _, s := range happyPath[:len(happyPath)-1] {
		if !s.CanTransition(BookingStatusCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", s)
		}
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	all := []BookingStatus{
		BookingStatusPending,
		BookingStatusAssigned,
		BookingStatusEnroute,
		BookingStatusArrived,
		BookingStatusInTransit,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}

	for _, terminal := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		if !terminal.IsTerminal() {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, to := range all {
			if terminal.CanTransition(to) {
				t.Errorf("expected %s -> %s to be rejected", terminal, to)
			}
		}
	}

	if BookingStatusPending.IsTerminal() {
		t.Error("expected pending to be non-terminal")
	}
}

func TestValidBookingStatus(t *testing.T) {
	t.Parallel()

	if !ValidBookingStatus(BookingStatusEnroute) {
		t.Error("expected enroute to be valid")
	}
	if ValidBookingStatus("dispatched") {
		t.Error("expected unknown status to be invalid")
	}
}

func TestValidEmergencyLevel(t *testing.T) {
	t.Parallel()

	for _, lvl := range []EmergencyLevel{EmergencyLow, EmergencyMedium, EmergencyCritical} {
		if !ValidEmergencyLevel(lvl) {
			t.Errorf("expected %s to be valid", lvl)
		}
	}

	for _, lvl := range []EmergencyLevel{"High", "low", "URGENT", ""} {
		if ValidEmergencyLevel(lvl) {
			t.Errorf("expected %q to be invalid", lvl)
		}
	}
}
