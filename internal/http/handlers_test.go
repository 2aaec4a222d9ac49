package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meetingsphere/internal/application"
)

type authServiceStub struct {
	result     application.SignInResult
	signInErr  error
	signOutErr error
	signedOut  []string
}

func (s *authServiceStub) SignIn(ctx context.Context, params application.SignInParams) (application.SignInResult, error) {
	if s.signInErr != nil {
		return application.SignInResult{}, s.signInErr
	}
	return s.result, nil
}

func (s *authServiceStub) SignOut(ctx context.Context, token string) error {
	s.signedOut = append(s.signedOut, token)
	return s.signOutErr
}

type bookingServiceStub struct {
	booking    application.Booking
	bookings   []application.Booking
	err        error
	saved      []application.SaveBookingParams
	deleted    []string
	listParams []application.ListBookingsParams
}

func (s *bookingServiceStub) Save(ctx context.Context, params application.SaveBookingParams) (application.Booking, error) {
	s.saved = append(s.saved, params)
	if s.err != nil {
		return application.Booking{}, s.err
	}
	return s.booking, nil
}

func (s *bookingServiceStub) Delete(ctx context.Context, principal application.Principal, bookingID string) error {
	s.deleted = append(s.deleted, bookingID)
	return s.err
}

func (s *bookingServiceStub) Get(ctx context.Context, principal application.Principal, bookingID string) (application.Booking, error) {
	if s.err != nil {
		return application.Booking{}, s.err
	}
	return s.booking, nil
}

func (s *bookingServiceStub) List(ctx context.Context, params application.ListBookingsParams) ([]application.Booking, error) {
	s.listParams = append(s.listParams, params)
	if s.err != nil {
		return nil, s.err
	}
	return s.bookings, nil
}

type roomServiceStub struct {
	room      application.Room
	rooms     []application.Room
	err       error
	created   []application.CreateRoomParams
	updated   []application.UpdateRoomParams
	activated []bool
	lastID    string
}

func (s *roomServiceStub) CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error) {
	s.created = append(s.created, params)
	if s.err != nil {
		return application.Room{}, s.err
	}
	return s.room, nil
}

func (s *roomServiceStub) UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (application.Room, error) {
	s.updated = append(s.updated, params)
	if s.err != nil {
		return application.Room{}, s.err
	}
	return s.room, nil
}

func (s *roomServiceStub) SetRoomActive(ctx context.Context, principal application.Principal, roomID string, active bool) (application.Room, error) {
	s.lastID = roomID
	s.activated = append(s.activated, active)
	if s.err != nil {
		return application.Room{}, s.err
	}
	return s.room, nil
}

func (s *roomServiceStub) ListRooms(ctx context.Context, principal application.Principal, activeOnly bool) ([]application.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	if activeOnly {
		filtered := make([]application.Room, 0, len(s.rooms))
		for _, room := range s.rooms {
			if room.IsActive {
				filtered = append(filtered, room)
			}
		}
		return filtered, nil
	}
	return s.rooms, nil
}

type userServiceStub struct {
	user   application.User
	users  []application.User
	err    error
	roles  []application.SetUserRoleParams
	status []application.SetUserStatusParams
}

func (s *userServiceStub) SetRole(ctx context.Context, params application.SetUserRoleParams) (application.User, error) {
	s.roles = append(s.roles, params)
	if s.err != nil {
		return application.User{}, s.err
	}
	return s.user, nil
}

func (s *userServiceStub) SetStatus(ctx context.Context, params application.SetUserStatusParams) (application.User, error) {
	s.status = append(s.status, params)
	if s.err != nil {
		return application.User{}, s.err
	}
	return s.user, nil
}

func (s *userServiceStub) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	if s.err != nil {
		return application.User{}, s.err
	}
	return s.user, nil
}

func (s *userServiceStub) ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users, nil
}

func principalMiddleware(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("sign-in issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		expires := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
		service := &authServiceStub{result: application.SignInResult{
			User:    application.User{UID: "uid-1", Email: "taro@example.com", Role: application.RoleUser, Status: application.StatusActive},
			Session: application.Session{Token: "token-abc", ExpiresAt: expires},
		}}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"id_token":"valid"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Session-Token"); got != "token-abc" {
			t.Fatalf("expected X-Session-Token header, got %q", got)
		}
		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "session_token" {
				cookie = c
			}
		}
		if cookie == nil || cookie.Value != "token-abc" {
			t.Fatalf("expected session_token cookie, got %v", cookie)
		}
		var body signInResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Token != "token-abc" || body.User.UID != "uid-1" {
			t.Fatalf("unexpected response body: %+v", body)
		}
	})

	t.Run("invalid credentials answer 401", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{signInErr: application.ErrInvalidCredentials}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"id_token":"bogus"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
	})

	t.Run("blocked account answers 403", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{signInErr: application.ErrAccountBlocked}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"id_token":"valid"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
		if body := decodeErrorResponse(t, rec); body.ErrorCode != "AUTH_ACCOUNT_BLOCKED" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
	})

	t.Run("sign-out revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "token-abc"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if len(service.signedOut) != 1 || service.signedOut[0] != "token-abc" {
			t.Fatalf("expected sign-out with cookie token, got %v", service.signedOut)
		}
		cleared := false
		for _, c := range rec.Result().Cookies() {
			if c.Name == "session_token" && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected session cookie to be cleared")
		}
	})
}

func TestBookingHandlers(t *testing.T) {
	t.Parallel()

	member := application.Principal{UserID: "uid-1"}

	t.Run("create persists booking for the authenticated principal", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{booking: application.Booking{
			ID: "bk-1", RoomID: "room-1", UserID: "uid-1", Topic: "週次定例",
			Date: "2025-06-02", StartTime: "09:00", EndTime: "10:00",
		}}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		payload := `{"room_id":"room-1","topic":"週次定例","date":"2025-06-02","start_time":"09:00"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(service.saved) != 1 {
			t.Fatalf("expected one save call, got %d", len(service.saved))
		}
		params := service.saved[0]
		if params.Principal.UserID != "uid-1" || params.Input.ID != "" || params.Input.RoomID != "room-1" {
			t.Fatalf("unexpected save params: %+v", params)
		}
		var body bookingResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Booking.ID != "bk-1" || body.Booking.EndTime != "10:00" {
			t.Fatalf("unexpected booking payload: %+v", body.Booking)
		}
	})

	t.Run("update passes the path booking id to the service", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{booking: application.Booking{ID: "bk-7"}}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		payload := `{"room_id":"room-1","date":"2025-06-02","start_time":"11:00"}`
		req := httptest.NewRequest(http.MethodPut, "/bookings/bk-7", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(service.saved) != 1 || service.saved[0].Input.ID != "bk-7" {
			t.Fatalf("expected save with path id, got %+v", service.saved)
		}
	})

	t.Run("slot collision answers 409 with localized message", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{err: &application.ConflictError{
			WithBookingID: "bk-2", RoomID: "room-1", Date: "2025-06-02", StartTime: "09:00",
		}}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		payload := `{"room_id":"room-1","date":"2025-06-02","start_time":"09:00"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
		body := decodeErrorResponse(t, rec)
		if body.ErrorCode != "BOOKING_SLOT_TAKEN" {
			t.Fatalf("unexpected error code %q", body.ErrorCode)
		}
		if !strings.Contains(body.Message, "既に予約されています") {
			t.Fatalf("expected localized conflict message, got %q", body.Message)
		}
	})

	t.Run("validation failures answer 422 with localized field errors", func(t *testing.T) {
		t.Parallel()

		verr := &application.ValidationError{FieldErrors: map[string]string{
			"date": "date must be formatted as yyyy-MM-dd",
		}}
		service := &bookingServiceStub{err: verr}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"date":"today"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", rec.Code)
		}
		body := decodeErrorResponse(t, rec)
		if msg := body.Errors["date"]; !strings.Contains(msg, "yyyy-MM-dd") {
			t.Fatalf("expected localized date error, got %q", msg)
		}
	})

	t.Run("malformed json answers 400", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if len(service.saved) != 0 {
			t.Fatal("service must not be called for malformed payloads")
		}
	})

	t.Run("delete answers 204 and forwards the path id", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		req := httptest.NewRequest(http.MethodDelete, "/bookings/bk-9", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if len(service.deleted) != 1 || service.deleted[0] != "bk-9" {
			t.Fatalf("expected delete of bk-9, got %v", service.deleted)
		}
	})

	t.Run("list maps room and date query parameters", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{}
		router := NewRouter(RouterConfig{
			Bookings:   NewBookingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(member)},
		})

		req := httptest.NewRequest(http.MethodGet, "/bookings?room_id=room-2&date=2025-06-03", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(service.listParams) != 1 {
			t.Fatalf("expected one list call, got %d", len(service.listParams))
		}
		params := service.listParams[0]
		if params.RoomID != "room-2" || params.Date != "2025-06-03" {
			t.Fatalf("unexpected list params: %+v", params)
		}
	})
}

func TestRoomHandlers(t *testing.T) {
	t.Parallel()

	admin := application.Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("create answers 201 with the room payload", func(t *testing.T) {
		t.Parallel()

		service := &roomServiceStub{room: application.Room{
			ID: "room-1", Name: "Kiku", Location: "3F", Capacity: 8,
			StartTime: "08:00", EndTime: "18:00", IsActive: true,
		}}
		router := NewRouter(RouterConfig{
			Rooms:      NewRoomHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		payload := `{"name":"Kiku","location":"3F","capacity":8}`
		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		var body roomResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !body.Room.IsActive || body.Room.StartTime != "08:00" {
			t.Fatalf("unexpected room payload: %+v", body.Room)
		}
	})

	t.Run("non-admin mutations answer 403", func(t *testing.T) {
		t.Parallel()

		service := &roomServiceStub{err: application.ErrUnauthorized}
		router := NewRouter(RouterConfig{
			Rooms:      NewRoomHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(application.Principal{UserID: "uid-1"})},
		})

		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"name":"Kiku","location":"3F","capacity":8}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})

	t.Run("duplicate room name answers 409", func(t *testing.T) {
		t.Parallel()

		service := &roomServiceStub{err: application.ErrAlreadyExists}
		router := NewRouter(RouterConfig{
			Rooms:      NewRoomHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"name":"Kiku","location":"3F","capacity":8}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("active toggle routes through the nested path", func(t *testing.T) {
		t.Parallel()

		service := &roomServiceStub{room: application.Room{ID: "room-3", IsActive: false}}
		router := NewRouter(RouterConfig{
			Rooms:      NewRoomHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		req := httptest.NewRequest(http.MethodPut, "/rooms/room-3/active", strings.NewReader(`{"active":false}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if service.lastID != "room-3" {
			t.Fatalf("expected room-3, got %q", service.lastID)
		}
		if len(service.activated) != 1 || service.activated[0] {
			t.Fatalf("expected deactivation call, got %v", service.activated)
		}
	})

	t.Run("list honours the active query parameter", func(t *testing.T) {
		t.Parallel()

		service := &roomServiceStub{rooms: []application.Room{
			{ID: "room-1", Name: "Aoi", IsActive: true},
			{ID: "room-2", Name: "Kiku", IsActive: false},
		}}
		router := NewRouter(RouterConfig{
			Rooms:      NewRoomHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(application.Principal{UserID: "uid-1"})},
		})

		req := httptest.NewRequest(http.MethodGet, "/rooms?active=true", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var body listRoomsResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(body.Rooms) != 1 || body.Rooms[0].Name != "Aoi" {
			t.Fatalf("expected only active rooms, got %+v", body.Rooms)
		}
	})
}

func TestUserHandlers(t *testing.T) {
	t.Parallel()

	admin := application.Principal{UserID: "admin-1", IsAdmin: true}

	t.Run("role change routes through the nested path", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{user: application.User{UID: "uid-2", Role: application.RoleAdmin}}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		req := httptest.NewRequest(http.MethodPut, "/users/uid-2/role", strings.NewReader(`{"role":"admin"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(service.roles) != 1 {
			t.Fatalf("expected one role call, got %d", len(service.roles))
		}
		params := service.roles[0]
		if params.UserID != "uid-2" || params.Role != "admin" {
			t.Fatalf("unexpected role params: %+v", params)
		}
	})

	t.Run("status change routes through the nested path", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{user: application.User{UID: "uid-2", Status: application.StatusBlocked}}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		req := httptest.NewRequest(http.MethodPut, "/users/uid-2/status", strings.NewReader(`{"status":"blocked"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(service.status) != 1 || service.status[0].Status != "blocked" {
			t.Fatalf("unexpected status params: %+v", service.status)
		}
	})

	t.Run("missing user answers 404", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{err: application.ErrNotFound}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(admin)},
		})

		req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("non-admin listing answers 403", func(t *testing.T) {
		t.Parallel()

		service := &userServiceStub{err: application.ErrUnauthorized}
		router := NewRouter(RouterConfig{
			Users:      NewUserHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{principalMiddleware(application.Principal{UserID: "uid-1"})},
		})

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("unsupported methods answer 405 with an Allow header", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Bookings: NewBookingHandler(&bookingServiceStub{}, nil)})

		req := httptest.NewRequest(http.MethodPatch, "/bookings", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Fatalf("expected Allow header listing POST, got %q", allow)
		}
	})

	t.Run("open paths cover sign-in and the kiosk monitor", func(t *testing.T) {
		t.Parallel()

		open := []string{"/sessions", "/monitor", "/monitor/ws"}
		for _, path := range open {
			if !OpenPath(path) {
				t.Fatalf("expected %s to be open", path)
			}
		}
		closed := []string{"/sessions/current", "/bookings", "/schedule", "/schedule/ws", "/rooms"}
		for _, path := range closed {
			if OpenPath(path) {
				t.Fatalf("expected %s to require a session", path)
			}
		}
	})
}
