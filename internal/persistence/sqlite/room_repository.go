package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/meetingsphere/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	store *Store
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(store *Store) *RoomRepository {
	return &RoomRepository{store: store}
}

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO rooms (id, name, location, capacity, start_time, end_time, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.store.db.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.Location,
		room.Capacity,
		room.StartTime,
		room.EndTime,
		boolToInt(room.IsActive),
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateRoom updates an existing room, including its active flag.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE rooms
		SET name = ?, location = ?, capacity = ?, start_time = ?, end_time = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.store.db.ExecContext(ctx, query,
		room.Name,
		room.Location,
		room.Capacity,
		room.StartTime,
		room.EndTime,
		boolToInt(room.IsActive),
		room.UpdatedAt.UTC().Format(time.RFC3339),
		room.ID,
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

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, start_time, end_time, is_active, created_at, updated_at
		FROM rooms WHERE id = ?
	`, id)
	return scanRoom(row)
}

// ListRooms returns all rooms ordered by name, including deactivated ones.
// Callers filter on IsActive for booking and monitor views.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name, location, capacity, start_time, end_time, is_active, created_at, updated_at
		FROM rooms ORDER BY name, id
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var isActive int
	var createdAt, updatedAt string

	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Location,
		&room.Capacity,
		&room.StartTime,
		&room.EndTime,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, mapError(err)
	}

	room.IsActive = isActive != 0
	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return room, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
