package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// CreateBooking inserts a new booking. The unique slot index rejects a
// second booking for the same room, date and start time with ErrSlotTaken,
// so concurrent writers that both passed the conflict scan cannot both
// commit.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO bookings (id, room_id, user_id, user_display_name, topic, contact_number,
			date, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.store.db.ExecContext(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.UserDisplayName,
		booking.Topic,
		booking.ContactNumber,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.CreatedAt.UTC().Format(time.RFC3339),
		booking.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateBooking updates an existing booking. Moving a booking onto an
// occupied slot is rejected by the slot index with ErrSlotTaken.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE bookings
		SET room_id = ?, user_id = ?, user_display_name = ?, topic = ?, contact_number = ?,
			date = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.store.db.ExecContext(ctx, query,
		booking.RoomID,
		booking.UserID,
		booking.UserDisplayName,
		booking.Topic,
		booking.ContactNumber,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.UpdatedAt.UTC().Format(time.RFC3339),
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, room_id, user_id, user_display_name, topic, contact_number,
			date, start_time, end_time, created_at, updated_at
		FROM bookings WHERE id = ?
	`, id)
	return scanBooking(row)
}

// ListBookings returns bookings matching the filter, ordered by date and
// start time.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `
		SELECT id, room_id, user_id, user_display_name, topic, contact_number,
			date, start_time, end_time, created_at, updated_at
		FROM bookings
	`
	var conditions []string
	var args []any
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY date, start_time, id"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking by ID. Deleting an id that does not exist
// is an idempotent success.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return mapError(err)
	}
	return nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var createdAt, updatedAt string

	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.UserID,
		&booking.UserDisplayName,
		&booking.Topic,
		&booking.ContactNumber,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}

	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return booking, nil
}
