package timeslot

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in storage.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used on the wire and in storage.
const ClockLayout = "15:04"

// Booking is the slice of a persisted booking the conflict and occupancy
// rules operate on. Date and clock values are kept in their wire formats so
// rules reduce to string equality and ordering.
type Booking struct {
	ID        string
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
}

// Conflict identifies the existing booking that collides with a candidate.
type Conflict struct {
	WithBookingID string
	RoomID        string
	Date          string
	StartTime     string
}

// Slot is a fixed one-hour interval on the dashboard grid.
type Slot struct {
	StartTime string
	EndTime   string
}

// FindConflict reports the first existing booking that occupies the
// candidate's slot. The sole conflict rule is exact equality of room, date
// and start time; interval overlap is deliberately not considered. A booking
// never conflicts with itself, so edits keep their own slot.
func FindConflict(existing []Booking, candidate Booking) *Conflict {
	for _, b := range existing {
		if b.RoomID != candidate.RoomID {
			continue
		}
		if b.Date != candidate.Date || b.StartTime != candidate.StartTime {
			continue
		}
		if b.ID == candidate.ID {
			continue
		}
		return &Conflict{
			WithBookingID: b.ID,
			RoomID:        b.RoomID,
			Date:          b.Date,
			StartTime:     b.StartTime,
		}
	}
	return nil
}

// Slots generates the one-hour grid intervals for the operating window
// [openHour, closeHour). The close hour is capped at 23 so that every slot
// ends on a clock value bookings accept; hours outside that range or an
// empty window yield nil.
func Slots(openHour, closeHour int) []Slot {
	if openHour < 0 || closeHour > 23 || openHour >= closeHour {
		return nil
	}
	slots := make([]Slot, 0, closeHour-openHour)
	for hour := openHour; hour < closeHour; hour++ {
		slots = append(slots, Slot{
			StartTime: fmt.Sprintf("%02d:00", hour),
			EndTime:   fmt.Sprintf("%02d:00", hour+1),
		})
	}
	return slots
}

// Occupant returns the first booking for the room whose interval contains
// the clock value now, comparing "HH:mm" strings lexicographically. The end
// boundary is exclusive: a 09:00-10:00 booking frees the room at 10:00.
func Occupant(bookings []Booking, roomID, now string) (Booking, bool) {
	for _, b := range bookings {
		if b.RoomID != roomID {
			continue
		}
		if b.StartTime <= now && b.EndTime > now {
			return b, true
		}
	}
	return Booking{}, false
}

// FormatDate renders t as a calendar day in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatClock renders t as a time of day in its own location.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// AddHour returns the clock value one hour after start, wrapping at
// midnight. Invalid input is returned unchanged.
func AddHour(start string) string {
	t, err := time.Parse(ClockLayout, start)
	if err != nil {
		return start
	}
	return t.Add(time.Hour).Format(ClockLayout)
}

// ValidDate reports whether value parses as a "yyyy-MM-dd" calendar day.
func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// ValidClock reports whether value parses as an "HH:mm" time of day.
func ValidClock(value string) bool {
	_, err := time.Parse(ClockLayout, value)
	return err == nil
}
