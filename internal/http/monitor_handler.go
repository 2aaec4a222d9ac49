package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/meetingsphere/internal/projection"
	"github.com/example/meetingsphere/internal/viewcache"
)

// MonitorHandler serves the kiosk occupancy view. The kiosk is a passive
// display without credentials, so these endpoints sit outside the session
// gate.
type MonitorHandler struct {
	projector *projection.OccupancyProjector
	hub       *projection.Hub
	cache     *viewcache.Cache
	tick      time.Duration
	responder responder
	logger    *slog.Logger
}

func NewMonitorHandler(projector *projection.OccupancyProjector, hub *projection.Hub, cache *viewcache.Cache, tick time.Duration, logger *slog.Logger) *MonitorHandler {
	if tick <= 0 {
		tick = time.Minute
	}
	base := defaultLogger(logger)
	return &MonitorHandler{
		projector: projector,
		hub:       hub,
		cache:     cache,
		tick:      tick,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *MonitorHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MonitorHandler", operation, attrs...)
}

// Snapshot serves the current occupancy state. Responses are cached per
// minute; booking writes invalidate the monitor view immediately.
func (h *MonitorHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.projector == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	snapshot := h.projector.Snapshot()
	logger := h.log(r.Context(), "Snapshot", "date", snapshot.Date, "clock", snapshot.Clock)

	key := snapshot.Date + "T" + snapshot.Clock
	if payload, ok := h.cache.Get(r.Context(), viewcache.ViewMonitor, key); ok {
		writeRawJSON(w, http.StatusOK, payload)
		return
	}

	payload, err := json.Marshal(toOccupancyDTO(snapshot))
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to encode occupancy", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
		return
	}
	h.cache.Store(r.Context(), viewcache.ViewMonitor, key, payload)

	logger.With("room_count", len(snapshot.Statuses)).InfoContext(r.Context(), "occupancy served")
	writeRawJSON(w, http.StatusOK, payload)
}

// Live upgrades to a websocket and pushes a fresh occupancy snapshot on every
// booking change and on every clock tick.
func (h *MonitorHandler) Live(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.projector == nil || h.hub == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Live")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(projection.TopicBookings, nil)
	defer sub.Close()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		if err := conn.WriteJSON(toOccupancyDTO(h.projector.Snapshot())); err != nil {
			logger.InfoContext(r.Context(), "monitor subscriber gone", "error", err)
			return false
		}
		return true
	}

	logger.InfoContext(r.Context(), "monitor subscriber connected")
	if !send() {
		return
	}

	for {
		select {
		case <-sub.C:
			if !send() {
				return
			}
		case <-ticker.C:
			if !send() {
				return
			}
		case <-closed:
			logger.InfoContext(r.Context(), "monitor subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}

type occupancyDTO struct {
	Date  string          `json:"date"`
	Clock string          `json:"clock"`
	Rooms []roomStatusDTO `json:"rooms"`
}

type roomStatusDTO struct {
	Room    gridRoomDTO     `json:"room"`
	InUse   bool            `json:"in_use"`
	Booking *gridBookingDTO `json:"booking,omitempty"`
}

func toOccupancyDTO(snapshot projection.OccupancySnapshot) occupancyDTO {
	rooms := make([]roomStatusDTO, 0, len(snapshot.Statuses))
	for _, status := range snapshot.Statuses {
		dto := roomStatusDTO{
			Room: gridRoomDTO{
				ID:       status.Room.ID,
				Name:     status.Room.Name,
				Location: status.Room.Location,
				Capacity: status.Room.Capacity,
			},
			InUse: status.InUse,
		}
		if status.Booking != nil {
			dto.Booking = &gridBookingDTO{
				ID:              status.Booking.ID,
				UserID:          status.Booking.UserID,
				UserDisplayName: status.Booking.UserDisplayName,
				Topic:           status.Booking.Topic,
				StartTime:       status.Booking.StartTime,
				EndTime:         status.Booking.EndTime,
			}
		}
		rooms = append(rooms, dto)
	}
	return occupancyDTO{Date: snapshot.Date, Clock: snapshot.Clock, Rooms: rooms}
}
