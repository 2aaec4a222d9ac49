package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/meetingsphere/internal/application"
	"github.com/example/meetingsphere/internal/config"
	httptransport "github.com/example/meetingsphere/internal/http"
	"github.com/example/meetingsphere/internal/identity"
	"github.com/example/meetingsphere/internal/logging"
	"github.com/example/meetingsphere/internal/persistence"
	"github.com/example/meetingsphere/internal/persistence/sqlite"
	"github.com/example/meetingsphere/internal/projection"
	"github.com/example/meetingsphere/internal/viewcache"
)

const viewCacheTTL = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger(slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	userRepo := sqlite.NewUserRepository(store)
	roomRepo := sqlite.NewRoomRepository(store)
	bookingRepo := sqlite.NewBookingRepository(store)
	sessionRepo := sqlite.NewSessionRepository(store)

	cache := viewcache.New(cfg.RedisAddr, cfg.RedisPassword, viewCacheTTL)
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			logger.Error("failed to close view cache", "error", cerr)
		}
	}()

	hub := projection.NewHub()
	scheduleProjector := projection.NewScheduleProjector(hub, cfg.GridOpenHour, cfg.GridCloseHour)
	defer scheduleProjector.Close()
	occupancyProjector := projection.NewOccupancyProjector(hub, scheduleProjector.Rooms, time.Now, loc, cfg.MonitorTick)
	defer occupancyProjector.Close()

	rooms, err := roomRepo.ListRooms(context.Background())
	if err != nil {
		logger.Error("failed to load rooms", "error", err)
		os.Exit(1)
	}
	bookings, err := bookingRepo.ListBookings(context.Background(), persistence.BookingFilter{})
	if err != nil {
		logger.Error("failed to load bookings", "error", err)
		os.Exit(1)
	}
	scheduleProjector.Prime(rooms, bookings)
	occupancyProjector.Prime(bookings)

	refresher := newViewRefresher(roomRepo, bookingRepo, hub, cache, logger)

	provider := identity.NewJWTProvider(cfg.IdentitySecret, cfg.IdentityIssuer, cfg.IdentityAdminURL)

	idGenerator := uuid.NewString
	tokenGenerator := application.NewSessionTokenGenerator(cfg.SessionSecret)
	now := time.Now

	bookingService := application.NewBookingServiceWithLogger(
		newBookingRepositoryAdapter(bookingRepo),
		newRoomRepositoryAdapter(roomRepo),
		refresher,
		idGenerator,
		now,
		logger,
	)
	roomService := application.NewRoomServiceWithLogger(newRoomRepositoryAdapter(roomRepo), refresher, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(newUserStoreAdapter(userRepo), provider, now, logger)
	authService := application.NewAuthServiceWithLogger(
		provider,
		newUserStoreAdapter(userRepo),
		newSessionRepositoryAdapter(sessionRepo),
		cfg.AdminEmails,
		idGenerator,
		tokenGenerator,
		now,
		cfg.SessionTTL,
		logger,
	)

	authHandler := httptransport.NewAuthHandler(authService, logger)
	bookingHandler := httptransport.NewBookingHandler(bookingService, logger)
	roomHandler := httptransport.NewRoomHandler(roomService, logger)
	userHandler := httptransport.NewUserHandler(userService, logger)
	scheduleHandler := httptransport.NewScheduleHandler(scheduleProjector, hub, cache, now, loc, logger)
	monitorHandler := httptransport.NewMonitorHandler(occupancyProjector, hub, cache, cfg.MonitorTick, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     authHandler,
		Bookings: bookingHandler,
		Rooms:    roomHandler,
		Users:    userHandler,
		Schedule: scheduleHandler,
		Monitor:  monitorHandler,
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httptransport.OpenPath(r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meetingsphere API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// viewRefresher rebuilds the cached and live views after a successful write.
// It invalidates the Redis entries and pushes a full snapshot through the hub
// so websocket subscribers catch up without polling.
type viewRefresher struct {
	rooms    persistence.RoomRepository
	bookings persistence.BookingRepository
	hub      *projection.Hub
	cache    *viewcache.Cache
	logger   *slog.Logger
}

func newViewRefresher(rooms persistence.RoomRepository, bookings persistence.BookingRepository, hub *projection.Hub, cache *viewcache.Cache, logger *slog.Logger) *viewRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &viewRefresher{rooms: rooms, bookings: bookings, hub: hub, cache: cache, logger: logger}
}

func (v *viewRefresher) RefreshBookingViews(ctx context.Context) {
	if err := v.cache.Invalidate(ctx, viewcache.ViewDashboard, viewcache.ViewMonitor); err != nil {
		v.logger.WarnContext(ctx, "failed to invalidate cached views", "error", err)
	}
	bookings, err := v.bookings.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to reload bookings for projection", "error", err)
		return
	}
	v.hub.Publish(projection.Snapshot{Topic: projection.TopicBookings, Bookings: bookings})
}

func (v *viewRefresher) RefreshRoomViews(ctx context.Context) {
	if err := v.cache.Invalidate(ctx, viewcache.ViewDashboard, viewcache.ViewMonitor); err != nil {
		v.logger.WarnContext(ctx, "failed to invalidate cached views", "error", err)
	}
	rooms, err := v.rooms.ListRooms(ctx)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to reload rooms for projection", "error", err)
		return
	}
	v.hub.Publish(projection.Snapshot{Topic: projection.TopicRooms, Rooms: rooms})
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, booking.ID)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context, filter application.BookingRepositoryFilter) ([]application.Booking, error) {
	models, err := a.repo.ListBookings(ctx, persistence.BookingFilter{RoomID: filter.RoomID, Date: filter.Date})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings, nil
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

type userStoreAdapter struct {
	repo persistence.UserRepository
}

func newUserStoreAdapter(repo persistence.UserRepository) *userStoreAdapter {
	return &userStoreAdapter{repo: repo}
}

func (a *userStoreAdapter) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.UID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUser(ctx context.Context, uid string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, uid)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.UID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userStoreAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSessionsForUser(ctx context.Context, userID string, revokedAt time.Time) error {
	return a.repo.RevokeSessionsForUser(ctx, userID, revokedAt)
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:              booking.ID,
		RoomID:          booking.RoomID,
		UserID:          booking.UserID,
		UserDisplayName: booking.UserDisplayName,
		Topic:           booking.Topic,
		ContactNumber:   booking.ContactNumber,
		Date:            booking.Date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toApplicationBooking(booking persistence.Booking) application.Booking {
	return application.Booking{
		ID:              booking.ID,
		RoomID:          booking.RoomID,
		UserID:          booking.UserID,
		UserDisplayName: booking.UserDisplayName,
		Topic:           booking.Topic,
		ContactNumber:   booking.ContactNumber,
		Date:            booking.Date,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		StartTime: room.StartTime,
		EndTime:   room.EndTime,
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		StartTime: room.StartTime,
		EndTime:   room.EndTime,
		IsActive:  room.IsActive,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Status:      user.Status,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Status:      user.Status,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: session.RevokedAt,
	}
}
