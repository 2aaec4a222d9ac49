package projection

import (
	"sync"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
	"github.com/example/meetingsphere/internal/timeslot"
)

// RoomStatus reports whether a room is currently in use and by which
// booking.
type RoomStatus struct {
	Room    persistence.Room
	InUse   bool
	Booking *persistence.Booking
}

// OccupancySnapshot is the kiosk view state at one instant.
type OccupancySnapshot struct {
	Date     string
	Clock    string
	Statuses []RoomStatus
}

// RoomSource supplies the current active room list. The monitor view reuses
// the schedule projector's room state rather than a second subscription.
type RoomSource func() []persistence.Room

// OccupancyProjector recomputes per-room occupancy for the passive monitor
// view. A single bookings subscription, filtered by today's date, and a
// periodic tick both trigger a full rescan; the dataset is one day's
// bookings, so the scan stays cheap.
type OccupancyProjector struct {
	sub   *Subscription
	rooms RoomSource
	now   func() time.Time
	loc   *time.Location
	done  chan struct{}
	wg    sync.WaitGroup

	mu       sync.RWMutex
	bookings []persistence.Booking
	current  OccupancySnapshot
}

// NewOccupancyProjector subscribes and starts the tick loop. Callers must
// Close the projector when the kiosk view goes away.
func NewOccupancyProjector(hub *Hub, rooms RoomSource, now func() time.Time, loc *time.Location, tick time.Duration) *OccupancyProjector {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if tick <= 0 {
		tick = time.Second
	}

	p := &OccupancyProjector{
		rooms: rooms,
		now:   now,
		loc:   loc,
		done:  make(chan struct{}),
	}
	p.sub = hub.Subscribe(TopicBookings, func(b persistence.Booking) bool {
		return b.Date == timeslot.FormatDate(p.now().In(p.loc))
	})

	p.recompute()

	p.wg.Add(1)
	go p.run(tick)
	return p
}

// Prime seeds today's bookings before the first notification arrives.
func (p *OccupancyProjector) Prime(bookings []persistence.Booking) {
	p.mu.Lock()
	p.bookings = append([]persistence.Booking(nil), bookings...)
	p.mu.Unlock()
	p.recompute()
}

// Close stops the tick loop and releases the subscription.
func (p *OccupancyProjector) Close() {
	close(p.done)
	p.sub.Close()
	p.wg.Wait()
}

// Snapshot returns the latest computed kiosk state.
func (p *OccupancyProjector) Snapshot() OccupancySnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := p.current
	snapshot.Statuses = append([]RoomStatus(nil), p.current.Statuses...)
	return snapshot
}

func (p *OccupancyProjector) run(tick time.Duration) {
	defer p.wg.Done()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case snapshot := <-p.sub.C:
			p.mu.Lock()
			p.bookings = snapshot.Bookings
			p.mu.Unlock()
			p.recompute()
		case <-ticker.C:
			p.recompute()
		case <-p.done:
			return
		}
	}
}

func (p *OccupancyProjector) recompute() {
	localNow := p.now().In(p.loc)
	today := timeslot.FormatDate(localNow)
	clock := timeslot.FormatClock(localNow)

	var rooms []persistence.Room
	if p.rooms != nil {
		rooms = p.rooms()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]timeslot.Booking, 0, len(p.bookings))
	index := make(map[string]persistence.Booking, len(p.bookings))
	for _, b := range p.bookings {
		if b.Date != today {
			continue
		}
		candidates = append(candidates, timeslot.Booking{
			ID:        b.ID,
			RoomID:    b.RoomID,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
		index[b.ID] = b
	}

	statuses := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		status := RoomStatus{Room: room}
		if occupant, ok := timeslot.Occupant(candidates, room.ID, clock); ok {
			booking := index[occupant.ID]
			status.InUse = true
			status.Booking = &booking
		}
		statuses = append(statuses, status)
	}

	p.current = OccupancySnapshot{Date: today, Clock: clock, Statuses: statuses}
}
