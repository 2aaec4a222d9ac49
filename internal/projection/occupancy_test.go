package projection

import (
	"testing"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
)

func fixedClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
	}
}

func monitorRooms() []persistence.Room {
	return []persistence.Room{activeRoom("R1", "Sakura"), activeRoom("R2", "Ume")}
}

func newTestOccupancy(t *testing.T, hub *Hub, now func() time.Time) *OccupancyProjector {
	t.Helper()
	// A huge tick keeps recomputation driven purely by Prime and
	// notifications, so assertions stay deterministic.
	p := NewOccupancyProjector(hub, monitorRooms, now, time.UTC, time.Hour)
	t.Cleanup(p.Close)
	return p
}

func TestOccupancyProjector_MidIntervalOccupied(t *testing.T) {
	hub := NewHub()
	p := newTestOccupancy(t, hub, fixedClock(9, 30))

	p.Prime([]persistence.Booking{slotBooking("b-1", "R1", "2025-06-02", "09:00", "10:00")})

	snapshot := p.Snapshot()
	if snapshot.Date != "2025-06-02" || snapshot.Clock != "09:30" {
		t.Fatalf("unexpected snapshot header: %+v", snapshot)
	}
	if len(snapshot.Statuses) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(snapshot.Statuses))
	}
	if !snapshot.Statuses[0].InUse || snapshot.Statuses[0].Booking.ID != "b-1" {
		t.Fatalf("expected R1 in use by b-1, got %+v", snapshot.Statuses[0])
	}
	if snapshot.Statuses[1].InUse {
		t.Fatalf("expected R2 free, got %+v", snapshot.Statuses[1])
	}
}

func TestOccupancyProjector_EndBoundaryFreesRoom(t *testing.T) {
	hub := NewHub()
	p := newTestOccupancy(t, hub, fixedClock(10, 0))

	p.Prime([]persistence.Booking{slotBooking("b-1", "R1", "2025-06-02", "09:00", "10:00")})

	if status := p.Snapshot().Statuses[0]; status.InUse {
		t.Fatalf("expected R1 free at exactly 10:00, got %+v", status)
	}
}

func TestOccupancyProjector_IgnoresOtherDays(t *testing.T) {
	hub := NewHub()
	p := newTestOccupancy(t, hub, fixedClock(9, 30))

	p.Prime([]persistence.Booking{slotBooking("b-1", "R1", "2025-06-03", "09:00", "10:00")})

	if status := p.Snapshot().Statuses[0]; status.InUse {
		t.Fatalf("expected tomorrow's booking ignored, got %+v", status)
	}
}

func TestOccupancyProjector_NotificationRecomputes(t *testing.T) {
	hub := NewHub()
	p := newTestOccupancy(t, hub, fixedClock(9, 30))

	hub.Publish(Snapshot{Topic: TopicBookings, Bookings: []persistence.Booking{
		slotBooking("b-1", "R1", "2025-06-02", "09:00", "10:00"),
		slotBooking("b-2", "R1", "2025-06-03", "09:00", "10:00"),
	}})

	waitFor(t, func() bool {
		statuses := p.Snapshot().Statuses
		return len(statuses) == 2 && statuses[0].InUse
	})

	// The subscription filter keeps only today's bookings.
	if status := p.Snapshot().Statuses[0]; status.Booking.ID != "b-1" {
		t.Fatalf("expected b-1, got %+v", status.Booking)
	}
}
