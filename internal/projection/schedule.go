package projection

import (
	"sync"

	"github.com/example/meetingsphere/internal/persistence"
	"github.com/example/meetingsphere/internal/timeslot"
)

// Cell is one dashboard grid entry: the booking occupying a room at a slot,
// or nil when the slot is free.
type Cell struct {
	Slot    timeslot.Slot
	Booking *persistence.Booking
}

// GridRow is the dashboard row for one active room.
type GridRow struct {
	Room  persistence.Room
	Cells []Cell
}

// Grid is the UI-ready projection of one day's schedule.
type Grid struct {
	Date  string
	Slots []timeslot.Slot
	Rows  []GridRow
}

// ScheduleProjector maintains the dashboard projection from room and booking
// change notifications. Each notification replaces the corresponding full
// list; there is no incremental merging.
type ScheduleProjector struct {
	roomsSub    *Subscription
	bookingsSub *Subscription
	done        chan struct{}
	wg          sync.WaitGroup

	mu       sync.RWMutex
	rooms    []persistence.Room
	bookings []persistence.Booking

	openHour  int
	closeHour int
}

// NewScheduleProjector subscribes to both collections and starts folding
// notifications. Callers must Close the projector when the view goes away.
func NewScheduleProjector(hub *Hub, openHour, closeHour int) *ScheduleProjector {
	p := &ScheduleProjector{
		roomsSub:    hub.Subscribe(TopicRooms, nil),
		bookingsSub: hub.Subscribe(TopicBookings, nil),
		done:        make(chan struct{}),
		openHour:    openHour,
		closeHour:   closeHour,
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// Prime seeds the projection before the first notifications arrive.
func (p *ScheduleProjector) Prime(rooms []persistence.Room, bookings []persistence.Booking) {
	p.mu.Lock()
	p.rooms = activeRooms(rooms)
	p.bookings = append([]persistence.Booking(nil), bookings...)
	p.mu.Unlock()
}

// Close tears the projector down and releases both subscriptions.
func (p *ScheduleProjector) Close() {
	close(p.done)
	p.roomsSub.Close()
	p.bookingsSub.Close()
	p.wg.Wait()
}

func (p *ScheduleProjector) run() {
	defer p.wg.Done()
	for {
		select {
		case snapshot := <-p.roomsSub.C:
			p.mu.Lock()
			p.rooms = activeRooms(snapshot.Rooms)
			p.mu.Unlock()
		case snapshot := <-p.bookingsSub.C:
			p.mu.Lock()
			p.bookings = snapshot.Bookings
			p.mu.Unlock()
		case <-p.done:
			return
		}
	}
}

// Rooms returns the active rooms currently projected.
func (p *ScheduleProjector) Rooms() []persistence.Room {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]persistence.Room(nil), p.rooms...)
}

// Cell returns the booking occupying the room at the slot on the given day,
// or false when the slot is free. The first match wins.
func (p *ScheduleProjector) Cell(roomID, date, startTime string) (persistence.Booking, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, b := range p.bookings {
		if b.RoomID == roomID && b.Date == date && b.StartTime == startTime {
			return b, true
		}
	}
	return persistence.Booking{}, false
}

// Grid builds the dashboard rows for the requested day: every active room
// crossed with the fixed one-hour slots of the operating window. Slot
// generation deliberately ignores per-room operating hours.
func (p *ScheduleProjector) Grid(date string) Grid {
	slots := timeslot.Slots(p.openHour, p.closeHour)

	p.mu.RLock()
	defer p.mu.RUnlock()

	rows := make([]GridRow, 0, len(p.rooms))
	for _, room := range p.rooms {
		cells := make([]Cell, 0, len(slots))
		for _, slot := range slots {
			cell := Cell{Slot: slot}
			for i := range p.bookings {
				b := &p.bookings[i]
				if b.RoomID == room.ID && b.Date == date && b.StartTime == slot.StartTime {
					booking := *b
					cell.Booking = &booking
					break
				}
			}
			cells = append(cells, cell)
		}
		rows = append(rows, GridRow{Room: room, Cells: cells})
	}

	return Grid{Date: date, Slots: slots, Rows: rows}
}

func activeRooms(rooms []persistence.Room) []persistence.Room {
	filtered := make([]persistence.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsActive {
			filtered = append(filtered, room)
		}
	}
	return filtered
}
