package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint other than the slot
	// index rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrSlotTaken is returned when the room/date/start-time unique index
	// rejects a booking write.
	ErrSlotTaken = errors.New("persistence: slot taken")
	// ErrConstraintViolation is returned when a check constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
