package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studyhub/backend/internal/infrastructure/auth"
	"github.com/studyhub/backend/internal/infrastructure/logger"
)

// Keys under which the session identity is published on the gin context.
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "jwt_user_id"
	JWTRoleKey   = "jwt_role"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig configures the session middleware.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist, when set, also rejects revoked tokens and sessions.
	TokenBlacklist auth.TokenBlacklist
	Logger         *zap.Logger
}

// JWTAuthMiddlewareWithConfig guards routes behind a valid, unrevoked
// access token and publishes the session identity on the context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			rejectToken(c, cfg, auth.ErrInvalidToken, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, cfg, err, "access token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && !revocationAllows(c, cfg, claims) {
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		// The request logger picks the user up from the context.
		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin rejects sessions without the admin role. It must run after
// the session middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		switch {
		case claims == nil:
			abortJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		case !claims.IsAdmin():
			abortJSON(c, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		default:
			c.Next()
		}
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
	return token, found && token != ""
}

// revocationAllows reports whether the request may continue. Blacklist
// lookup failures fail open; the token still expires on its own.
func revocationAllows(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()

	// Single-token revocation from an explicit logout.
	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
		switch {
		case err != nil:
			logRevocationError(cfg, err, zap.String("jti", claims.ID))
		case revoked:
			rejectToken(c, cfg, auth.ErrTokenBlacklisted, "token revoked by logout")
			return false
		}
	}

	// User-wide revocation from a logout-everywhere.
	if claims.UserID != "" {
		revoked, err := cfg.TokenBlacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		switch {
		case err != nil:
			logRevocationError(cfg, err, zap.String("user_id", claims.UserID))
		case revoked:
			rejectToken(c, cfg, auth.ErrTokenBlacklisted, "session invalidated for user")
			return false
		}
	}

	return true
}

func logRevocationError(cfg JWTMiddlewareConfig, err error, field zap.Field) {
	if cfg.Logger != nil {
		cfg.Logger.Error("Revocation check failed", field, zap.Error(err))
	}
}

func rejectToken(c *gin.Context, cfg JWTMiddlewareConfig, err error, reason string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Request rejected by session middleware",
			zap.String("reason", reason),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	code, message := "UNAUTHORIZED", "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = "TOKEN_REVOKED", "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = "INVALID_TOKEN_TYPE", "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = "TOKEN_NOT_VALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken):
		code, message = "INVALID_TOKEN", "Invalid token"
	}

	abortJSON(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims returns the session claims, or nil outside a session.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

// GetJWTUserID returns the session user ID, or "" outside a session.
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole returns the session role, or "" outside a session.
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}
