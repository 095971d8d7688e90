package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/constants"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// AuthResponse is returned by every operation that establishes or renews a
// session: signup, login, password change and password reset.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService handles credential verification and the session lifecycle.
type AuthService struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	jwtService   *auth.JWTService
	emailSender  EmailSender
	passwordCfg  *auth.PasswordConfig
	appCfg       *config.AppConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	jwtService *auth.JWTService,
	emailSender EmailSender,
	passwordCfg *auth.PasswordConfig,
	appCfg *config.AppConfig,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		jwtService:   jwtService,
		emailSender:  emailSender,
		passwordCfg:  passwordCfg,
		appCfg:       appCfg,
	}
}

// Signup registers a new user, provisions their default settings and logs
// them in.
func (s *AuthService) Signup(ctx context.Context, reg *models.UserRegistration) (*AuthResponse, error) {
	if err := utils.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.NewDuplicateError("User", "email", reg.Email)
	}

	passwordHash, salt, err := auth.HashPassword(reg.Password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(reg.Name, reg.Email)
	user.PasswordHash = passwordHash
	user.Salt = salt

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Create(ctx, models.DefaultSettings(user.ID)); err != nil {
		// The account exists and can log in; settings fall back to defaults
		// on first read if this row is missing.
		log.Warn().
			Err(err).
			Int64("user_id", user.ID).
			Msg("Failed to provision default settings")
	}

	utils.LogAuth("signup", utils.FormatInt64(user.ID), user.Email, true, "")

	return s.issueSession(user)
}

// Login verifies credentials and mints a session token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, creds *models.UserCredentials) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login", "", creds.Email, false, "unknown email")
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(creds.Password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		utils.LogAuth("login", utils.FormatInt64(user.ID), user.Email, false, "wrong password")
		return nil, utils.NewInvalidCredentialsError()
	}

	utils.LogAuth("login", utils.FormatInt64(user.ID), user.Email, true, "")

	return s.issueSession(user)
}

// ChangePassword verifies the current password, stores the new one and
// re-issues a session. Tokens minted before the change are stale from this
// point on.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *models.ChangePasswordRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	match, err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		utils.LogAuth("password_change", utils.FormatInt64(user.ID), user.Email, false, "wrong password")
		return nil, utils.NewInvalidCredentialsError()
	}

	if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
		return nil, err
	}

	utils.LogAuth("password_change", utils.FormatInt64(user.ID), user.Email, true, "")

	return s.issueSession(user)
}

// ForgotPassword starts the reset handshake: it stores a hashed one-time
// token against the account and emails the plain token. If delivery fails
// the stored token is rolled back so the handshake leaves no trace.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	plainToken, tokenHash, err := auth.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(constants.ResetTokenDuration)
	if err := s.userRepo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/user/resetPassword/%s", s.appCfg.App.BaseURL, plainToken)

	if err := s.emailSender.SendPasswordReset(ctx, user.Email, user.Name, resetURL, constants.ResetTokenDuration); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Error().
				Err(clearErr).
				Int64("user_id", user.ID).
				Msg("Failed to roll back reset token after delivery failure")
		}
		return utils.NewDeliveryError(err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("Password reset token issued")

	return nil
}

// ResetPassword completes the handshake: it matches the raw token against
// the stored hash, rejects expired or unknown tokens, sets the new
// password, consumes the token and logs the user in.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken string, req *models.ResetPasswordRequest) (*AuthResponse, error) {
	tokenHash := auth.HashResetToken(rawToken)

	user, err := s.userRepo.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewInvalidResetTokenError()
		}
		return nil, err
	}

	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.ClearResetToken(ctx, user.ID); err != nil {
		return nil, err
	}

	utils.LogAuth("password_reset", utils.FormatInt64(user.ID), user.Email, true, "")

	return s.issueSession(user)
}

// setPassword hashes and stores a new password. The recorded change time
// is backdated slightly so a session issued in the same instant is not
// misjudged stale.
func (s *AuthService) setPassword(ctx context.Context, user *models.User, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, salt, err := auth.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := time.Now().Add(-constants.PasswordChangedAtSkew)
	if err := s.userRepo.ChangePassword(ctx, user.ID, passwordHash, salt, changedAt); err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	user.Salt = salt
	user.PasswordChangedAt = &changedAt

	return nil
}

// issueSession mints a session token and wraps it with the sanitized user.
func (s *AuthService) issueSession(user *models.User) (*AuthResponse, error) {
	token, issuedAt, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.jwtService.Config.Expiry),
		User:      user.Sanitize(),
	}, nil
}
