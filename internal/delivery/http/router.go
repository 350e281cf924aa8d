package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventbuddy/internal/delivery/http/controllers"
	"eventbuddy/internal/delivery/http/middleware"
	"eventbuddy/internal/domain"
)

// RouterConfig holds the controllers and the auth service the routes are wired to.
type RouterConfig struct {
	Logger   *slog.Logger
	Auth     domain.AuthService
	Accounts *controllers.AuthController
	Session  *controllers.SessionController
	Events   *controllers.EventController
	Streams  *controllers.StreamController
	Users    *controllers.UserController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(cfg.Auth, cfg.Logger)
	optionalAuth := middleware.OptionalAuth(cfg.Auth, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", cfg.Accounts.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Accounts.Login)
	mux.HandleFunc("POST /auth/logout", requireAuth(cfg.Accounts.Logout))
	mux.HandleFunc("GET /session", optionalAuth(cfg.Session.GetSession))

	// Events
	mux.HandleFunc("GET /events", requireAuth(cfg.Events.ListEvents))
	mux.HandleFunc("POST /events", requireAuth(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /events/stream", requireAuth(cfg.Streams.StreamEvents))
	mux.HandleFunc("GET /events/calendar.ics", requireAuth(cfg.Events.Calendar))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(cfg.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(cfg.Events.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/form", requireAuth(cfg.Events.GetEventForm))
	mux.HandleFunc("GET /events/{eventID}/stream", requireAuth(cfg.Streams.StreamEvent))
	mux.HandleFunc("POST /events/{eventID}/participation", requireAuth(cfg.Events.ToggleParticipation))

	// Current user
	mux.HandleFunc("GET /me", requireAuth(cfg.Users.GetMe))
	mux.HandleFunc("GET /me/favorites", requireAuth(cfg.Users.ListFavorites))
	mux.HandleFunc("POST /me/favorites/{eventID}", requireAuth(cfg.Users.ToggleFavorite))
	mux.HandleFunc("GET /me/participations", requireAuth(cfg.Users.ListParticipations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with request logging and CORS.
func NewHandler(cfg RouterConfig, allowedOrigins []string) http.Handler {
	return middleware.CORS(allowedOrigins, middleware.LoggingMiddleware(cfg.Logger, NewRouter(cfg)))
}
