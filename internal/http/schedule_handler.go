package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/meetingsphere/internal/projection"
	"github.com/example/meetingsphere/internal/timeslot"
	"github.com/example/meetingsphere/internal/viewcache"
)

// The dashboard is a browser client on the same origin or a kiosk client
// without one; the session middleware is the actual gate.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ScheduleHandler serves the dashboard grid, as a cached JSON document and as
// a live websocket feed that re-sends the full grid on every change.
type ScheduleHandler struct {
	projector *projection.ScheduleProjector
	hub       *projection.Hub
	cache     *viewcache.Cache
	now       func() time.Time
	loc       *time.Location
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(projector *projection.ScheduleProjector, hub *projection.Hub, cache *viewcache.Cache, now func() time.Time, loc *time.Location, logger *slog.Logger) *ScheduleHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	base := defaultLogger(logger)
	return &ScheduleHandler{
		projector: projector,
		hub:       hub,
		cache:     cache,
		now:       now,
		loc:       loc,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

// Grid serves the day grid. Results are cached per date until the next
// booking or room write invalidates the dashboard view.
func (h *ScheduleHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.projector == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = timeslot.FormatDate(h.now().In(h.loc))
	}
	if !timeslot.ValidDate(date) {
		h.log(r.Context(), "Grid", "date", date, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid schedule date")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "Grid", "date", date)

	if payload, ok := h.cache.Get(r.Context(), viewcache.ViewDashboard, date); ok {
		logger.InfoContext(r.Context(), "grid served from cache")
		writeRawJSON(w, http.StatusOK, payload)
		return
	}

	grid := toGridDTO(h.projector.Grid(date))
	payload, err := json.Marshal(grid)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to encode grid", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
		return
	}
	h.cache.Store(r.Context(), viewcache.ViewDashboard, date, payload)

	logger.With("row_count", len(grid.Rows)).InfoContext(r.Context(), "grid served")
	writeRawJSON(w, http.StatusOK, payload)
}

// Live upgrades to a websocket and pushes the full grid whenever rooms or
// bookings change. Each message replaces the previous state entirely.
func (h *ScheduleHandler) Live(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.projector == nil || h.hub == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = timeslot.FormatDate(h.now().In(h.loc))
	}
	if !timeslot.ValidDate(date) {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "Live", "date", date)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	roomsSub := h.hub.Subscribe(projection.TopicRooms, nil)
	defer roomsSub.Close()
	bookingsSub := h.hub.Subscribe(projection.TopicBookings, nil)
	defer bookingsSub.Close()

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
		if err := conn.WriteJSON(toGridDTO(h.projector.Grid(date))); err != nil {
			logger.InfoContext(r.Context(), "grid subscriber gone", "error", err)
			return false
		}
		return true
	}

	logger.InfoContext(r.Context(), "grid subscriber connected")
	if !send() {
		return
	}

	for {
		select {
		case <-roomsSub.C:
			if !send() {
				return
			}
		case <-bookingsSub.C:
			if !send() {
				return
			}
		case <-closed:
			logger.InfoContext(r.Context(), "grid subscriber disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

type gridDTO struct {
	Date  string       `json:"date"`
	Slots []slotDTO    `json:"slots"`
	Rows  []gridRowDTO `json:"rooms"`
}

type slotDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type gridRowDTO struct {
	Room  gridRoomDTO   `json:"room"`
	Cells []gridCellDTO `json:"cells"`
}

type gridRoomDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

type gridCellDTO struct {
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Booking   *gridBookingDTO `json:"booking,omitempty"`
}

type gridBookingDTO struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	UserDisplayName string `json:"user_display_name,omitempty"`
	Topic           string `json:"topic,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
}

func toGridDTO(grid projection.Grid) gridDTO {
	slots := make([]slotDTO, 0, len(grid.Slots))
	for _, slot := range grid.Slots {
		slots = append(slots, slotDTO{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}

	rows := make([]gridRowDTO, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		cells := make([]gridCellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			dto := gridCellDTO{StartTime: cell.Slot.StartTime, EndTime: cell.Slot.EndTime}
			if cell.Booking != nil {
				dto.Booking = &gridBookingDTO{
					ID:              cell.Booking.ID,
					UserID:          cell.Booking.UserID,
					UserDisplayName: cell.Booking.UserDisplayName,
					Topic:           cell.Booking.Topic,
					StartTime:       cell.Booking.StartTime,
					EndTime:         cell.Booking.EndTime,
				}
			}
			cells = append(cells, dto)
		}
		rows = append(rows, gridRowDTO{
			Room: gridRoomDTO{
				ID:       row.Room.ID,
				Name:     row.Room.Name,
				Location: row.Room.Location,
				Capacity: row.Room.Capacity,
			},
			Cells: cells,
		})
	}

	return gridDTO{Date: grid.Date, Slots: slots, Rows: rows}
}
