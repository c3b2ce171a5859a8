package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studyhub/backend/internal/domain/identity"
	"github.com/studyhub/backend/internal/domain/shared"
	"github.com/studyhub/backend/internal/infrastructure/auth"
	"github.com/studyhub/backend/internal/infrastructure/config"
	"github.com/studyhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// GoogleAuthenticator abstracts the OAuth provider so the service can be
// tested without real Google round trips
type GoogleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// AuthService handles sign-in, token refresh and sign-out. Accounts exist
// only through Google OAuth; the first sign-in creates the account.
type AuthService struct {
	userRepo   identity.UserRepository
	google     GoogleAuthenticator
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	adminCfg   config.AdminConfig
	metrics    *telemetry.ContentMetrics
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	google GoogleAuthenticator,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	adminCfg config.AdminConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		google:     google,
		jwtService: jwtService,
		blacklist:  blacklist,
		adminCfg:   adminCfg,
		logger:     logger,
	}
}

// SetContentMetrics sets the content metrics collector
func (s *AuthService) SetContentMetrics(cm *telemetry.ContentMetrics) {
	s.metrics = cm
}

// recordSignIn reports the sign-in outcome when metrics are wired
func (s *AuthService) recordSignIn(ctx context.Context, status telemetry.SignInStatus) {
	if s.metrics != nil {
		s.metrics.RecordSignIn(ctx, status)
	}
}

// LoginURL returns the Google consent page URL for the given state
func (s *AuthService) LoginURL(state string) string {
	return s.google.AuthURL(state)
}

// LoginWithGoogle completes the OAuth code exchange and signs the user in,
// creating the account on first sign-in. Bootstrap admin emails are promoted
// on every sign-in so the list in configuration stays authoritative.
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*LoginResult, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("Google code exchange failed", zap.Error(err))
		s.recordSignIn(ctx, telemetry.SignInStatusFailed)
		if errors.Is(err, auth.ErrHostedDomainMismatch) {
			return nil, shared.NewDomainError("DOMAIN_NOT_ALLOWED", "This Google account's domain is not allowed")
		}
		return nil, shared.NewDomainError("OAUTH_EXCHANGE_FAILED", "Failed to verify Google sign-in")
	}

	user, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	user.RefreshProfile(profile.Name, profile.GivenName, profile.Picture)
	if s.adminCfg.IsBootstrapAdmin(user.Email) {
		user.PromoteToAdmin()
	}
	user.RecordLogin()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User signed in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	s.recordSignIn(ctx, telemetry.SignInStatusSuccess)

	return &LoginResult{
		User:   ToUserResponse(user),
		Tokens: tokens,
	}, nil
}

// Refresh validates a refresh token and mints a new token pair. The user's
// email and role are re-read from the database so role changes and deleted
// accounts take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	if revoked, err := s.isRevoked(ctx, claims); err != nil {
		return nil, err
	} else if revoked {
		return nil, shared.ErrUnauthorized
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	return s.jwtService.RefreshTokenPair(refreshToken, user.Email, string(user.Role))
}

// Logout revokes the presented token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// LogoutAll revokes every token issued to the user before now
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.blacklist.RevokeAllForUser(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration())
}

// CurrentUser returns the account behind an authenticated request
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// isRevoked checks both the single-token and the user-wide revocation marks
func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	if revoked, err := s.blacklist.IsRevoked(ctx, claims.ID); err != nil || revoked {
		return revoked, err
	}
	return s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
}

// findOrCreateUser resolves the account for a Google profile. A profile whose
// email matches an existing account is linked to it rather than duplicated,
// which covers accounts whose Google ID changed after a domain migration.
func (s *AuthService) findOrCreateUser(ctx context.Context, profile *auth.GoogleUser) (*identity.User, error) {
	user, err := s.userRepo.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = s.userRepo.FindByEmail(ctx, profile.Email)
	if err == nil {
		user.GoogleID = profile.ID
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err = identity.NewUser(profile.ID, profile.Email, profile.Name, profile.GivenName, profile.Picture)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("New account created", zap.String("user_id", user.ID.String()))
	return user, nil
}
