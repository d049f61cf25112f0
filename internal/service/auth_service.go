package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/metrics"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/repository"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// TokenIssuer issues access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (string, string, error)
}

// AuthService handles signup and login
type AuthService struct {
	userRepo       repository.UserRepository
	auditTrailRepo repository.AuditTrailRepository
	bans           BanChecker
	tokens         TokenIssuer
	passwordCfg    *auth.PasswordConfig
	tokenExpiry    int64
	metrics        *metrics.Collector
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	auditTrailRepo repository.AuditTrailRepository,
	bans BanChecker,
	jwtService *auth.JWTService,
	passwordCfg *auth.PasswordConfig,
	collector *metrics.Collector,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		auditTrailRepo: auditTrailRepo,
		bans:           bans,
		tokens:         jwtService,
		passwordCfg:    passwordCfg,
		tokenExpiry:    int64(jwtService.GetConfig().Expiry.Seconds()),
		metrics:        collector,
	}
}

// RegisterUser creates a new user account joined from ip
func (s *AuthService) RegisterUser(ctx context.Context, reg *models.UserRegistration, ip string) (user *models.User, err error) {
	defer func() { s.metrics.AuthAttempt("signup", err) }()

	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if err := utils.ValidateUsername(reg.Username); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, utils.NewValidationError("confirm_password", "Passwords do not match")
	}

	if err := s.bans.CheckBan(ctx, models.BanQuery{Username: reg.Username, Email: reg.Email, IP: ip}); err != nil {
		utils.LogAuth("register_banned", 0, reg.Username, false, "banned")
		return nil, err
	}

	existsUsername, err := s.userRepo.ExistsByUsername(ctx, reg.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if existsUsername {
		return nil, utils.NewDuplicateError("User", "username", reg.Username)
	}

	existsEmail, err := s.userRepo.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existsEmail {
		return nil, utils.NewDuplicateError("User", "email", reg.Email)
	}

	passwordHash, salt, err := auth.HashPassword(reg.Password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = models.NewUser(reg.Username, reg.Email, ip)
	user.PasswordHash = passwordHash
	user.Salt = salt

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.LogAuth("register_success", user.ID, user.Username, true, "")

	return user.Sanitize(), nil
}

// AuthenticateUser verifies credentials, records the client IP in the audit
// trail and issues an access token.
func (s *AuthService) AuthenticateUser(ctx context.Context, creds *models.UserCredentials, ip string) (result *models.LoginResponse, err error) {
	defer func() { s.metrics.AuthAttempt("login", err) }()

	var user *models.User
	switch {
	case creds.Username != "":
		user, err = s.userRepo.GetByUsername(ctx, creds.Username)
	case creds.Email != "":
		user, err = s.userRepo.GetByEmail(ctx, creds.Email)
	default:
		return nil, utils.NewValidationError("credentials", "Username or email is required")
	}

	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login_failed", 0, creds.Username, false, "user not found")
			return nil, utils.NewInvalidCredentialsError()
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.VerifyPassword(creds.Password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		utils.LogAuth("login_failed", user.ID, user.Username, false, "invalid password")
		return nil, utils.NewInvalidCredentialsError()
	}

	if !user.IsStaff {
		if err := s.bans.CheckBan(ctx, models.BanQuery{Username: user.Username, Email: user.Email, IP: ip}); err != nil {
			utils.LogAuth("login_banned", user.ID, user.Username, false, "banned")
			return nil, err
		}
	}

	if ip != "" {
		if err := s.auditTrailRepo.Create(ctx, models.NewAuditTrail(user.ID, ip)); err != nil {
			return nil, err
		}
	}

	accessToken, _, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	utils.LogAuth("login_success", user.ID, user.Username, true, "")
	log.Debug().Int64("user_id", user.ID).Msg("Access token issued")

	return &models.LoginResponse{
		AccessToken: accessToken,
		TokenType:   strings.TrimSpace(constants.BearerTokenPrefix),
		ExpiresIn:   s.tokenExpiry,
		User:        user.Profile(),
	}, nil
}
