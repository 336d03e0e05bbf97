package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"

	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/utils"
	"go.uber.org/zap"
)

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials accepts form-encoded bodies and, when the request says so, JSON.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsInput, bool) {
	var in credentialsInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return in, false
		}
		return in, true
	}

	if err := r.ParseForm(); err != nil {
		return in, false
	}
	in.Username = r.PostFormValue("username")
	in.Password = r.PostFormValue("password")
	return in, true
}

// POST /signup
// Signup godoc
// @Summary Create an account
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username (max 20 characters)"
// @Param password formData string true "Password"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload "Missing fields or username already exists"
// @Router /signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	in, ok := readCredentials(w, r)
	if !ok {
		badRequest(w, "Invalid input")
		return
	}

	if _, err := h.creds.Create(r.Context(), in.Username, in.Password); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.SuccessResponse(w, "Signup successful", nil)
}

// POST /login
// Login godoc
// @Summary Log in and receive a session cookie
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload "Invalid username or password"
// @Router /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := readCredentials(w, r)
	if !ok {
		badRequest(w, "Invalid input")
		return
	}
	h.log.Info("login attempt", zap.String("username", in.Username))

	user, err := h.creds.Verify(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, expiration, err := h.sessions.Issue(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, token, expiration)

	utils.SuccessResponse(w, "Login successful", map[string]any{
		"username": user.Username,
	})
}

// POST /logout
// Logout godoc
// @Summary Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, sessionCookie)

	utils.SuccessResponse(w, "Logged out successfully", nil)
}

// GET /auth/google/login
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.NotFound(w, r)
		return
	}

	authURL, state, err := h.google.AuthCodeURL(r.URL.Query().Get("redirect"))
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   600,
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.NotFound(w, r)
		return
	}

	state := r.FormValue("state")
	expected, err := r.Cookie(stateCookie)
	if err != nil || expected.Value == "" || expected.Value != state {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	h.clearCookie(w, stateCookie)

	stateData, err := services.DecodeState(state)
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	flow := stateData["flow"]

	user, err := h.google.Complete(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.Warn("google sign-in failed", zap.Error(err))
		http.Redirect(w, r, h.frontendURL+"/login?error="+url.QueryEscape("google_sign_in_failed"), http.StatusTemporaryRedirect)
		return
	}

	token, expiration, err := h.sessions.Issue(user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setSessionCookie(w, token, expiration)

	status := "success_login"
	if flow == services.FlowRegister {
		status = "success_register"
	}
	http.Redirect(w, r, h.frontendURL+"/dashboard?status="+status, http.StatusTemporaryRedirect)
}
