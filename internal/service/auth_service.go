package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"daycaremoments/internal/models"
	"daycaremoments/internal/pricing"
	"daycaremoments/internal/provider/notify"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/security"
	"daycaremoments/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

const resetTokenTTL = time.Hour

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	orgRepo         *repository.OrganizationRepository
	tokens          *security.TokenIssuer
	notifier        notify.Notifier
	baseURL         string
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, orgRepo *repository.OrganizationRepository, tokens *security.TokenIssuer, notifier notify.Notifier, baseURL string, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		orgRepo:         orgRepo,
		tokens:          tokens,
		notifier:        notifier,
		baseURL:         baseURL,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new daycare organization and its first admin user.
func (s *AuthService) Register(orgName, email, password, name string) (*models.User, error) {
	if err := validation.ValidateName(orgName); err != nil {
		return nil, validation.ValidationError{Field: "organization", Message: "organization name is required"}
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	org, err := s.orgRepo.Create(orgName, email, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	user, err := s.userRepo.Create(email, passwordHash, name, "", models.RoleAdmin, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, user, nil
}

// OAuthLogin authenticates or creates a user from a Google OAuth identity.
// New users become parents of a new organization's waiting room only if they
// already exist; unknown emails are rejected because parents are enrolled by
// staff, not self-registered.
func (s *AuthService) OAuthLogin(provider, subject, email string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser == nil {
			return nil, nil, ErrInvalidCredentials
		}
		if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
			return nil, nil, ErrEmailTaken
		}
		if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
			return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		user = existingUser
	}

	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// RequestPasswordReset emails the user a signed reset link. To avoid account
// enumeration it reports success even when the email is unknown.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := s.tokens.IssueResetToken(user.ID, resetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	payload := notify.Payload{
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hi %s,\n\nReset your password using this link (valid for 1 hour):\n%s\n", user.Name, resetURL),
	}
	if err := s.notifier.Send(ctx, notify.ChannelEmail, user.Email, payload); err != nil {
		log.Printf("Warning: failed to send reset email to %s: %v", user.Email, err)
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the user a valid reset token names.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return ErrInvalidCredentials
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CreateStaffUser lets an admin add a staff member with a temporary password.
func (s *AuthService) CreateStaffUser(email, name, orgID string) (*models.User, string, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	existingUser, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrEmailTaken
	}

	tempPassword, err := security.GenerateTempPassword(12)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := security.HashPassword(tempPassword)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(email, passwordHash, name, "", models.RoleStaff, orgID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	return user, tempPassword, nil
}

// OrganizationTier resolves the pricing tier of an organization.
func (s *AuthService) OrganizationTier(orgID string) (pricing.Tier, error) {
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return pricing.Tier{}, fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return pricing.Tier{}, fmt.Errorf("organization not found")
	}
	tier, err := pricing.Get(org.PricingTier)
	if err != nil {
		// Rows written before a tier rename fall back to the default plan.
		return pricing.Get(pricing.DefaultTier)
	}
	return tier, nil
}
