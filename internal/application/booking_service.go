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

// BookingRepository captures the persistence interactions needed by the service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter BookingRepositoryFilter) ([]Booking, error)
}

// BookingRepositoryFilter narrows queries issued to the booking repository.
type BookingRepositoryFilter struct {
	RoomID string
	Date   string
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// ViewRefresher is notified after a successful write so that derived views
// (cached dashboards, live subscriptions) can be rebuilt. Failures are the
// refresher's own concern; services treat the call as fire-and-forget.
type ViewRefresher interface {
	RefreshBookingViews(ctx context.Context)
	RefreshRoomViews(ctx context.Context)
}

// BookingService orchestrates validation, conflict detection, and persistence
// for room reservations.
type BookingService struct {
	bookings    BookingRepository
	rooms       RoomCatalog
	refresher   ViewRefresher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(bookings BookingRepository, rooms RoomCatalog, refresher ViewRefresher, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, refresher, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingRepository, rooms RoomCatalog, refresher ViewRefresher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		refresher:   refresher,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Save validates the request, rejects slot collisions, and persists the
// booking. When the input carries an ID the existing booking is updated,
// otherwise a new one is created.
func (s *BookingService) Save(ctx context.Context, params SaveBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Save",
		"principal_id", params.Principal.UserID,
		"room_id", params.Input.RoomID,
		"date", params.Input.Date,
		"start_time", params.Input.StartTime,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking saved")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	input.RoomID = strings.TrimSpace(input.RoomID)
	input.Date = strings.TrimSpace(input.Date)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	if input.EndTime == "" && timeslot.ValidClock(input.StartTime) {
		input.EndTime = timeslot.AddHour(input.StartTime)
	}

	vErr := validateBookingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.rooms != nil {
		var room Room
		room, err = s.rooms.GetRoom(ctx, input.RoomID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
				vErr := &ValidationError{}
				vErr.add("room_id", "room does not exist")
				err = vErr
			}
			return
		}
		if !room.IsActive {
			vErr := &ValidationError{}
			vErr.add("room_id", "room is not available")
			err = vErr
			return
		}
	}

	if err = s.checkConflict(ctx, input); err != nil {
		return
	}

	now := s.now()
	if input.ID == "" {
		booking = Booking{
			ID:              s.idGenerator(),
			RoomID:          input.RoomID,
			UserID:          params.Principal.UserID,
			UserDisplayName: params.Principal.DisplayName,
			Topic:           strings.TrimSpace(input.Topic),
			ContactNumber:   strings.TrimSpace(input.ContactNumber),
			Date:            input.Date,
			StartTime:       input.StartTime,
			EndTime:         input.EndTime,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		booking, err = s.bookings.CreateBooking(ctx, booking)
	} else {
		var existing Booking
		existing, err = s.bookings.GetBooking(ctx, input.ID)
		if err != nil {
			err = mapBookingRepoError(err, input)
			return
		}

		updated := existing
		updated.RoomID = input.RoomID
		updated.Topic = strings.TrimSpace(input.Topic)
		updated.ContactNumber = strings.TrimSpace(input.ContactNumber)
		updated.Date = input.Date
		updated.StartTime = input.StartTime
		updated.EndTime = input.EndTime
		updated.UpdatedAt = now

		booking, err = s.bookings.UpdateBooking(ctx, updated)
	}
	if err != nil {
		err = mapBookingRepoError(err, input)
		return
	}

	if s.refresher != nil {
		s.refresher.RefreshBookingViews(ctx)
	}
	return
}

// Delete removes a booking. Deleting an ID that no longer exists succeeds so
// that repeated cancellations stay harmless.
func (s *BookingService) Delete(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "Delete",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)

	if principal.UserID == "" {
		logger.ErrorContext(ctx, "failed to delete booking", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}
	if strings.TrimSpace(bookingID) == "" {
		vErr := &ValidationError{}
		vErr.add("booking_id", "booking id is required")
		logger.ErrorContext(ctx, "failed to delete booking", "error", vErr, "error_kind", ErrorKind(vErr))
		return vErr
	}

	if err := s.bookings.DeleteBooking(ctx, strings.TrimSpace(bookingID)); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			logger.InfoContext(ctx, "booking already deleted")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if s.refresher != nil {
		s.refresher.RefreshBookingViews(ctx)
	}
	logger.InfoContext(ctx, "booking deleted")
	return nil
}

// Get returns a single booking by ID.
func (s *BookingService) Get(ctx context.Context, principal Principal, bookingID string) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking repository not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	booking, err = s.bookings.GetBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		err = mapBookingRepoError(err, BookingInput{})
	}
	return
}

// List returns bookings matching the filter, ordered by date then start time.
func (s *BookingService) List(ctx context.Context, params ListBookingsParams) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}
	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "List",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
		"date", params.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(bookings)).InfoContext(ctx, "bookings listed")
	}()

	var raw []Booking
	raw, err = s.bookings.ListBookings(ctx, BookingRepositoryFilter{
		RoomID: strings.TrimSpace(params.RoomID),
		Date:   strings.TrimSpace(params.Date),
	})
	if err != nil {
		err = mapBookingRepoError(err, BookingInput{})
		return
	}

	bookings = make([]Booking, len(raw))
	copy(bookings, raw)
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		if bookings[i].StartTime != bookings[j].StartTime {
			return bookings[i].StartTime < bookings[j].StartTime
		}
		return bookings[i].ID < bookings[j].ID
	})
	return
}

// checkConflict scans existing bookings for the same room and day. A save is
// rejected only when another booking holds the exact same start time.
func (s *BookingService) checkConflict(ctx context.Context, input BookingInput) error {
	existing, err := s.bookings.ListBookings(ctx, BookingRepositoryFilter{
		RoomID: input.RoomID,
		Date:   input.Date,
	})
	if err != nil {
		return mapBookingRepoError(err, input)
	}

	candidates := make([]timeslot.Booking, 0, len(existing))
	for _, b := range existing {
		candidates = append(candidates, timeslot.Booking{
			ID:        b.ID,
			RoomID:    b.RoomID,
			Date:      b.Date,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}

	conflict := timeslot.FindConflict(candidates, timeslot.Booking{
		ID:        input.ID,
		RoomID:    input.RoomID,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	})
	if conflict == nil {
		return nil
	}
	return &ConflictError{
		WithBookingID: conflict.WithBookingID,
		RoomID:        conflict.RoomID,
		Date:          conflict.Date,
		StartTime:     conflict.StartTime,
	}
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if input.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if !timeslot.ValidDate(input.Date) {
		vErr.add("date", "date must be formatted as yyyy-MM-dd")
	}
	if input.StartTime == "" {
		vErr.add("start_time", "start time is required")
	} else if !timeslot.ValidClock(input.StartTime) {
		vErr.add("start_time", "start time must be formatted as HH:mm")
	}
	if input.EndTime != "" && !timeslot.ValidClock(input.EndTime) {
		vErr.add("end_time", "end time must be formatted as HH:mm")
	}
	if timeslot.ValidClock(input.StartTime) && timeslot.ValidClock(input.EndTime) && input.EndTime <= input.StartTime {
		vErr.add("end_time", "end time must come after start time")
	}

	return vErr
}

func mapBookingRepoError(err error, input BookingInput) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrSlotTaken) {
		return &ConflictError{
			RoomID:    input.RoomID,
			Date:      input.Date,
			StartTime: input.StartTime,
		}
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("room_id", "room does not exist")
		return vErr
	}
	return err
}
