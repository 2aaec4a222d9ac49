package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID      string
	DisplayName string
	IsAdmin     bool
}

// Role values assignable to a user account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Status values assignable to a user account.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User represents an account exposed by the application services.
type User struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin reports whether the account carries the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Location  string
	Capacity  int
	StartTime string
	EndTime   string
}

// Room represents a catalog entry for a physical meeting room.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	StartTime string
	EndTime   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// BookingInput captures caller provided booking fields. Date is "yyyy-MM-dd"
// and StartTime/EndTime are "HH:mm". When EndTime is empty the slot runs one
// hour from StartTime. When ID is set the save updates an existing booking.
type BookingInput struct {
	ID            string
	RoomID        string
	Topic         string
	ContactNumber string
	Date          string
	StartTime     string
	EndTime       string
}

// Booking represents a persisted one-hour room reservation.
type Booking struct {
	ID              string
	RoomID          string
	UserID          string
	UserDisplayName string
	Topic           string
	ContactNumber   string
	Date            string
	StartTime       string
	EndTime         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SaveBookingParams wraps the data required to create or update a booking.
type SaveBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// ListBookingsParams narrows booking listings.
type ListBookingsParams struct {
	Principal Principal
	RoomID    string
	Date      string
}

// SetUserRoleParams wraps an administrator role change request.
type SetUserRoleParams struct {
	Principal Principal
	UserID    string
	Role      string
}

// SetUserStatusParams wraps an administrator status change request.
type SetUserStatusParams struct {
	Principal Principal
	UserID    string
	Status    string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SignInParams captures the data required to establish a session.
type SignInParams struct {
	IDToken string
}

// SignInResult captures the outcome of a successful sign-in.
type SignInResult struct {
	User    User
	Session Session
}
