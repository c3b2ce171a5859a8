package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/backend/internal/application/identity"
	"github.com/studyhub/backend/internal/infrastructure/config"
	"github.com/studyhub/backend/internal/interfaces/http/middleware"
)

const (
	stateCookieName   = "oauth_state"
	refreshCookieName = "refresh_token"
	stateCookieTTL    = 10 * time.Minute
)

// AuthHandler handles the Google sign-in lifecycle and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookieCfg   config.CookieConfig
	frontendURL string
	refreshTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookieCfg config.CookieConfig, frontendURL string, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieCfg:   cookieCfg,
		frontendURL: frontendURL,
		refreshTTL:  refreshTTL,
	}
}

// GoogleLogin sets a state cookie and redirects the browser to Google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		h.InternalError(c, "Failed to start sign-in")
		return
	}

	h.setCookie(c, stateCookieName, state, int(stateCookieTTL.Seconds()))
	c.Redirect(http.StatusTemporaryRedirect, h.authService.LoginURL(state))
}

// GoogleCallback exchanges the authorization code, establishes the session
// and hands the browser back to the frontend
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != cookieState {
		h.Unauthorized(c, "Invalid OAuth state")
		return
	}
	h.clearCookie(c, stateCookieName)

	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "Missing authorization code")
		return
	}

	result, err := h.authService.LoginWithGoogle(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setCookie(c, refreshCookieName, result.Tokens.RefreshToken, int(h.refreshTTL.Seconds()))

	if h.frontendURL != "" {
		redirect := h.frontendURL + "/auth/callback?" + url.Values{
			"token": {result.Tokens.AccessToken},
		}.Encode()
		c.Redirect(http.StatusTemporaryRedirect, redirect)
		return
	}
	h.Success(c, result)
}

// Refresh exchanges a refresh token, from the session cookie or the request
// body, for a fresh token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)
	if refreshToken == "" {
		var req identity.RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Unauthorized(c, "Refresh token required")
			return
		}
		refreshToken = req.RefreshToken
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearCookie(c, refreshCookieName)
		h.HandleError(c, err)
		return
	}

	h.setCookie(c, refreshCookieName, pair.RefreshToken, int(h.refreshTTL.Seconds()))
	h.Success(c, pair)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Logout revokes the presented access token and drops the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearCookie(c, refreshCookieName)
	h.NoContent(c)
}

// LogoutAll revokes every outstanding token of the authenticated user
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearCookie(c, refreshCookieName)
	h.NoContent(c)
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(sameSiteFrom(h.cookieCfg.SameSite))
	c.SetCookie(name, value, maxAge, h.cookiePath(), h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(sameSiteFrom(h.cookieCfg.SameSite))
	c.SetCookie(name, "", -1, h.cookiePath(), h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func (h *AuthHandler) cookiePath() string {
	if h.cookieCfg.Path != "" {
		return h.cookieCfg.Path
	}
	return "/"
}

func sameSiteFrom(policy string) http.SameSite {
	switch policy {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
