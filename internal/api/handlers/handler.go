package handlers

import (
	"errors"
	"net/http"

	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/utils"
	"go.uber.org/zap"
)

// Handler serves the HTTP API. All dependencies are passed in at startup.
type Handler struct {
	creds          *services.Credentials
	sessions       *services.Sessions
	uploads        *services.Uploads
	files          *services.Files
	google         *services.GoogleAuth // nil when Google sign-in is disabled
	secureCookies  bool
	frontendURL    string
	maxUploadBytes int64
	log            *zap.Logger
}

type Deps struct {
	Credentials *services.Credentials
	Sessions    *services.Sessions
	Uploads     *services.Uploads
	Files       *services.Files
	Google      *services.GoogleAuth
	// SecureCookies marks session cookies Secure and SameSite=None.
	SecureCookies bool
	FrontendURL   string
	// MaxUploadBytes caps the size of an upload request body.
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		creds:          d.Credentials,
		sessions:       d.Sessions,
		uploads:        d.Uploads,
		files:          d.Files,
		google:         d.Google,
		secureCookies:  d.SecureCookies,
		frontendURL:    d.FrontendURL,
		maxUploadBytes: d.MaxUploadBytes,
		log:            d.Logger,
	}
}

// writeError turns a service error into the JSON failure payload.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := "Internal server error"

	var se *services.Error
	if errors.As(err, &se) {
		message = se.Message
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	utils.ErrorResponse(w, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrQuotaExceeded):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(w http.ResponseWriter, message string) {
	utils.ErrorResponse(w, http.StatusBadRequest, message)
}
