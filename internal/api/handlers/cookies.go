package handlers

import (
	"net/http"
	"time"
)

const (
	sessionCookie = "token"
	stateCookie   = "oauth_state"
)

func (h *Handler) sameSite() http.SameSite {
	if h.secureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiration time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiration).Seconds()),
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // maxAge < 0 deletes the cookie
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}
