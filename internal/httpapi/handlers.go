package httpapi

import (
	"net/http"
	"time"

	"mathmate/internal/auth"
)

func (a *API) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	id, err := a.auth.Register(r.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", UserID: id})
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	user, session, err := a.auth.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, a.sessionCookie(session.ID, session.ExpiresAt))
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Logged in successfully",
		User:    userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context(), sessionID(r)); err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, a.sessionCookie("", time.Unix(0, 0)))
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (a *API) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, err := a.auth.CurrentUser(r.Context(), sessionID(r))
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, currentUserResponse{User: identity})
}

func (a *API) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var request tokenRequest
	if !decodeAndValidate(w, r, &request) {
		return
	}

	token, err := a.auth.IssueToken(r.Context(), request.Email)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (a *API) HandleProtected(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, protectedResponse{Message: "Access granted to protected route", User: identity})
}

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.Ping(r.Context()); err != nil {
			a.logger(r).WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// sessionCookie builds the session cookie; a zero-epoch expiry clears it.
func (a *API) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	return cookie
}
