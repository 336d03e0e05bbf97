package api

import (
	"fmt"
	"net/http"

	_ "github.com/rohits-web03/stashbox/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/stashbox/internal/api/handlers"
	"github.com/rohits-web03/stashbox/internal/api/middleware"
	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP surface. A nil limiter leaves signup and login unthrottled.
func SetupRouter(h *handlers.Handler, sessions *services.Sessions, limiter *middleware.RateLimiter, corsOptions cors.Options, log *zap.Logger) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(corsOptions)
	auth := middleware.Auth(sessions)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	throttled := func(fn http.HandlerFunc) http.Handler {
		if limiter == nil {
			return fn
		}
		return limiter.Wrap(fn)
	}
	mainMux.Handle("POST /signup", throttled(h.Signup))
	mainMux.Handle("POST /login", throttled(h.Login))
	mainMux.HandleFunc("GET /auth/google/login", h.GoogleLogin)
	mainMux.HandleFunc("GET /auth/google/callback", h.GoogleCallback)

	// ---------- PROTECTED ROUTES ----------
	protected := func(pattern string, fn http.HandlerFunc) {
		mainMux.Handle(pattern, auth(fn))
	}
	protected("POST /logout", h.Logout)
	protected("GET /dashboard", h.Dashboard)
	protected("GET /api/usage", h.Usage)
	protected("POST /upload", h.UploadFile)
	protected("PUT /update_file/{filename}", h.UpdateFile)
	protected("PUT /files/{id}", h.RenameFile)
	protected("GET /files/{id}/download", h.DownloadFile)

	log.Info("router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(log)(handler)
	handler = middleware.Recover(log)(handler)
	return handler
}
