package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"daycaremoments/internal/models"
	"daycaremoments/internal/security"
	"daycaremoments/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthHandler serves registration, login, logout, and the OAuth flow.
type AuthHandler struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	oauthConfig *oauth2.Config
}

// NewAuthHandler creates an auth handler. clientID may be empty, which
// disables the OAuth routes.
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, clientID, clientSecret, baseURL string) *AuthHandler {
	var oauthConfig *oauth2.Config
	if clientID != "" && clientSecret != "" {
		oauthConfig = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &AuthHandler{
		authService: authService,
		csrf:        csrf,
		oauthConfig: oauthConfig,
	}
}

type registerRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
}

// Register creates a new daycare and its admin account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, err := h.authService.Register(req.OrganizationName, req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, userView(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	body := userView(user)
	if token, err := h.csrf.GenerateToken(session.ID); err == nil {
		body["csrf_token"] = token
	}
	respondJSON(w, http.StatusOK, body)
}

// Logout invalidates the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to log out", "", err)
			return
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user along with a fresh CSRF token for the
// session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	body := userView(user)
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if token, err := h.csrf.GenerateToken(cookie.Value); err == nil {
			body["csrf_token"] = token
		}
	}
	respondJSON(w, http.StatusOK, body)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword emails a reset link. Always answers 200 so the endpoint
// cannot be used to probe for accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset email sent if the account exists"})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword sets a new password from a reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// StartOAuth redirects to Google's consent page.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if h.oauthConfig == nil {
		respondWithError(w, http.StatusBadRequest, "OAuth is not configured", "", nil)
		return
	}

	state := security.GenerateSessionID()
	http.SetCookie(w, security.CreateSessionCookie(r, "oauth_state", state, time.Now().Add(10*time.Minute)))

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback finishes the Google flow and logs the user in.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauthConfig == nil {
		respondWithError(w, http.StatusBadRequest, "OAuth is not configured", "", nil)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, "oauth_state"))

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "OAuth exchange failed", "oauth exchange", err)
		return
	}

	info, err := h.fetchUserInfo(r, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch user profile", "oauth userinfo", err)
		return
	}

	session, user, err := h.authService.OAuthLogin("google", info.ID, info.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	body := userView(user)
	if token, err := h.csrf.GenerateToken(session.ID); err == nil {
		body["csrf_token"] = token
	}
	respondJSON(w, http.StatusOK, body)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *AuthHandler) fetchUserInfo(r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("incomplete userinfo response")
	}
	return &info, nil
}

// userView is the JSON shape for a user, password hash excluded.
func userView(user *models.User) map[string]interface{} {
	if user == nil {
		return nil
	}
	return map[string]interface{}{
		"id":              user.ID,
		"email":           user.Email,
		"name":            user.Name,
		"phone":           user.Phone,
		"role":            string(user.Role),
		"organization_id": user.OrganizationID,
	}
}
