package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
	"github.com/example/meetingsphere/internal/timeslot"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

const (
	defaultRoomOpen  = "08:00"
	defaultRoomClose = "18:00"
)

// RoomService orchestrates validation, authorization, and persistence for the
// room catalog. Rooms are never deleted; deactivation hides them from booking
// and monitor views while preserving booking history.
type RoomService struct {
	rooms       RoomRepository
	refresher   ViewRefresher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, refresher ViewRefresher, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, refresher, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, refresher ViewRefresher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		refresher:   refresher,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeRoomInput(params.Input)
	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room = Room{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Location:  input.Location,
		Capacity:  input.Capacity,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	room.UpdatedAt = room.CreatedAt

	if s.rooms == nil {
		return
	}

	var persisted Room
	persisted, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}
	room = persisted

	if s.refresher != nil {
		s.refresher.RefreshRoomViews(ctx)
	}
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	input := normalizeRoomInput(params.Input)
	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = input.Name
	updated.Location = input.Location
	updated.Capacity = input.Capacity
	updated.StartTime = input.StartTime
	updated.EndTime = input.EndTime
	updated.UpdatedAt = s.now()

	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if s.refresher != nil {
		s.refresher.RefreshRoomViews(ctx)
	}
	return
}

// SetRoomActive toggles a room in or out of the bookable catalog.
func (s *RoomService) SetRoomActive(ctx context.Context, principal Principal, roomID string, active bool) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetRoomActive",
		"principal_id", principal.UserID,
		"room_id", roomID,
		"active", active,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change room availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room availability changed")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if existing.IsActive == active {
		room = existing
		return
	}

	existing.IsActive = active
	existing.UpdatedAt = s.now()

	room, err = s.rooms.UpdateRoom(ctx, existing)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	if s.refresher != nil {
		s.refresher.RefreshRoomViews(ctx)
	}
	return
}

// GetRoom returns a single catalog entry.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID string) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	room, err = s.rooms.GetRoom(ctx, strings.TrimSpace(roomID))
	if err != nil {
		err = mapRoomRepoError(err)
	}
	return
}

// ListRooms returns the room catalog sorted by name. When activeOnly is set,
// deactivated rooms are filtered out.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal, activeOnly bool) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "ListRooms",
		"principal_id", principal.UserID,
		"active_only", activeOnly,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	rooms = make([]Room, 0, len(raw))
	for _, room := range raw {
		if activeOnly && !room.IsActive {
			continue
		}
		rooms = append(rooms, room)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if strings.EqualFold(rooms[i].Name, rooms[j].Name) {
			return rooms[i].ID < rooms[j].ID
		}
		return strings.ToLower(rooms[i].Name) < strings.ToLower(rooms[j].Name)
	})
	return
}

func normalizeRoomInput(input RoomInput) RoomInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Location = strings.TrimSpace(input.Location)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	if input.StartTime == "" {
		input.StartTime = defaultRoomOpen
	}
	if input.EndTime == "" {
		input.EndTime = defaultRoomClose
	}
	return input
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Location == "" {
		vErr.add("location", "location is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if !timeslot.ValidClock(input.StartTime) {
		vErr.add("start_time", "start time must be formatted as HH:mm")
	}
	if !timeslot.ValidClock(input.EndTime) {
		vErr.add("end_time", "end time must be formatted as HH:mm")
	}
	if timeslot.ValidClock(input.StartTime) && timeslot.ValidClock(input.EndTime) && input.EndTime <= input.StartTime {
		vErr.add("end_time", "end time must come after start time")
	}

	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
