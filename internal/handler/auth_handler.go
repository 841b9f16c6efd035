package handler

import (
	"net/http"
	"time"

	"go-message-board/internal/middleware"
	"go-message-board/internal/model"
	"go-message-board/internal/service"
	"go-message-board/pkg/apierror"
)

type AuthHandler struct {
	auth         *service.AuthService
	users        *service.UserService
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, cookieSecure: cookieSecure}
}

// Login answers with the token pair and also hands the access token back as a
// bearer header and an HTTP-only cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokens.AccessToken)
	http.SetCookie(w, h.accessCookie(tokens.AccessToken, time.Duration(tokens.ExpiresIn)*time.Second))
	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.accessCookie(tokens.AccessToken, time.Duration(tokens.ExpiresIn)*time.Second))
	writeSuccess(w, http.StatusOK, tokens)
}

// Logout only clears the cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.accessCookie("", -1))
	writeSuccess(w, http.StatusOK, map[string]any{"loggedOut": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.NewAuthUser(user))
}

func (h *AuthHandler) OnlyAdmin(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "Hello, Admin!")
}

// accessCookie builds the access token cookie; a negative maxAge deletes it.
func (h *AuthHandler) accessCookie(value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	if maxAge < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(maxAge.Seconds())
	}

	return cookie
}
