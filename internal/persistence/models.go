package persistence

import "time"

// User represents an account provisioned from the external sign-in provider.
type User struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room represents a meeting room catalog entry. Deactivated rooms are kept
// but excluded from booking and monitor views.
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

// Booking represents a reserved one-hour slot stored in persistence. Date is
// "yyyy-MM-dd"; StartTime and EndTime are "HH:mm".
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

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
