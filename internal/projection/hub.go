// Package projection keeps the UI-facing derived state live. A Hub carries
// change notifications as full-snapshot payloads from the write path to the
// projectors, which fold the latest snapshot into in-memory views for the
// dashboard grid and the kiosk monitor.
package projection

import (
	"sync"

	"github.com/example/meetingsphere/internal/persistence"
)

// Topic names a collection whose changes can be observed.
type Topic string

const (
	// TopicRooms carries full room-catalog snapshots.
	TopicRooms Topic = "rooms"
	// TopicBookings carries full booking-collection snapshots.
	TopicBookings Topic = "bookings"
)

// Snapshot is one change notification. Every notification carries the full
// collection state, never an incremental diff.
type Snapshot struct {
	Topic    Topic
	Rooms    []persistence.Room
	Bookings []persistence.Booking
}

// BookingFilter narrows booking snapshots delivered to a subscription,
// matching the store's subscribe-with-equality-filter contract.
type BookingFilter func(persistence.Booking) bool

// Subscription is a live, non-restartable sequence of snapshots. Consumers
// receive on C and must call Close when the view is torn down, or the
// subscription leaks.
type Subscription struct {
	C <-chan Snapshot

	hub    *Hub
	id     uint64
	ch     chan Snapshot
	filter BookingFilter
	topic  Topic
	once   sync.Once
}

// Close releases the subscription. Closing twice is safe.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}

// Hub fans change notifications out to subscribers. Publishing never blocks:
// a subscriber that has not consumed the previous snapshot is advanced to
// the latest one, which is safe because snapshots are complete.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers interest in a topic. A non-nil filter narrows booking
// snapshots; it is ignored for other topics.
func (h *Hub) Subscribe(topic Topic, filter BookingFilter) *Subscription {
	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, hub: h, ch: ch, filter: filter, topic: topic}

	h.mu.Lock()
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	h.mu.Unlock()

	return sub
}

// Publish delivers the snapshot to every subscription of its topic.
func (h *Hub) Publish(snapshot Snapshot) {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.topic == snapshot.Topic {
			subs = append(subs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range subs {
		delivery := snapshot
		if snapshot.Topic == TopicBookings && sub.filter != nil {
			delivery.Bookings = filterBookings(snapshot.Bookings, sub.filter)
		}

		for {
			select {
			case sub.ch <- delivery:
			default:
				// Drop the stale snapshot and retry with the latest.
				select {
				case <-sub.ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func filterBookings(bookings []persistence.Booking, filter BookingFilter) []persistence.Booking {
	filtered := make([]persistence.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
