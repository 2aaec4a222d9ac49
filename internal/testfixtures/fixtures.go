package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meetingsphere/internal/application"
	"github.com/example/meetingsphere/internal/persistence"
)

var (
	userCounter    uint64
	roomCounter    uint64
	bookingCounter uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	uid := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		UID:         uid,
		Email:       fmt.Sprintf("%s@example.com", uid),
		DisplayName: fmt.Sprintf("User %03d", idx),
		Role:        application.RoleUser,
		Status:      application.StatusActive,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserUID overrides the generated user UID.
func WithUserUID(uid string) UserOption {
	return func(f *UserFixture) {
		f.UID = uid
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserRole sets the role on the generated fixture.
func WithUserRole(role string) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// WithUserStatus sets the account status on the generated fixture.
func WithUserStatus(status string) UserOption {
	return func(f *UserFixture) {
		f.Status = status
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		UID:         f.UID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.UID, DisplayName: f.DisplayName, IsAdmin: f.Role == application.RoleAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		UID:         f.UID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
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

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  fmt.Sprintf("%dF", idx%10+1),
		Capacity:  8,
		StartTime: "08:00",
		EndTime:   "18:00",
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomLocation overrides the generated location.
func WithRoomLocation(location string) RoomOption {
	return func(f *RoomFixture) {
		f.Location = location
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomHours sets the bookable window on the fixture.
func WithRoomHours(start, end string) RoomOption {
	return func(f *RoomFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithRoomActive sets the active flag on the fixture.
func WithRoomActive(active bool) RoomOption {
	return func(f *RoomFixture) {
		f.IsActive = active
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
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

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture. Slots walk the
// working day one hour at a time so consecutive fixtures never collide.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	id := fmt.Sprintf("booking-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	hour := 8 + int(idx%10)
	fixture := BookingFixture{
		ID:              id,
		RoomID:          "room-001",
		UserID:          "user-001",
		UserDisplayName: "User 001",
		Topic:           fmt.Sprintf("Meeting %03d", idx),
		ContactNumber:   "1234",
		Date:            referenceTime.Format("2006-01-02"),
		StartTime:       fmt.Sprintf("%02d:00", hour),
		EndTime:         fmt.Sprintf("%02d:00", hour+1),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingRoom overrides the referenced room ID.
func WithBookingRoom(roomID string) BookingOption {
	return func(f *BookingFixture) {
		f.RoomID = roomID
	}
}

// WithBookingUser overrides the booking owner.
func WithBookingUser(userID, displayName string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
		f.UserDisplayName = displayName
	}
}

// WithBookingTopic overrides the generated topic.
func WithBookingTopic(topic string) BookingOption {
	return func(f *BookingFixture) {
		f.Topic = topic
	}
}

// WithBookingSlot sets the date and hour window on the fixture.
func WithBookingSlot(date, start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
		f.StartTime = start
		f.EndTime = end
	}
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:              f.ID,
		RoomID:          f.RoomID,
		UserID:          f.UserID,
		UserDisplayName: f.UserDisplayName,
		Topic:           f.Topic,
		ContactNumber:   f.ContactNumber,
		Date:            f.Date,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:              f.ID,
		RoomID:          f.RoomID,
		UserID:          f.UserID,
		UserDisplayName: f.UserDisplayName,
		Topic:           f.Topic,
		ContactNumber:   f.ContactNumber,
		Date:            f.Date,
		StartTime:       f.StartTime,
		EndTime:         f.EndTime,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        id,
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser overrides the session owner.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiry sets the expiry timestamp on the fixture.
func WithSessionExpiry(expires time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expires
	}
}

// WithSessionRevoked marks the session revoked at the provided time.
func WithSessionRevoked(revoked time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: f.RevokedAt,
	}
}
