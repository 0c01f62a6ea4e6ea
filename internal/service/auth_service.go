package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sigmadevelopers/portfolio/internal/config"
	"github.com/sigmadevelopers/portfolio/internal/ids"
	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/repository"
	"github.com/sigmadevelopers/portfolio/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const resetTokenTTL = 15 * time.Minute

type AuthService struct {
	users        *repository.UserRepository
	testimonials *repository.TestimonialRepository
	cfg          *config.AppConfig
	log          zerolog.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	testimonials *repository.TestimonialRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		testimonials: testimonials,
		cfg:          cfg,
		log:          log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by login and registration. The client persists the
// user into its session store and attaches the user id to later requests.
type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return AuthResult{}, fmt.Errorf("name, email and password required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Role:         models.UserRoleMember,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user models.User) (AuthResult, error) {
	token, err := security.GenerateAccessToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		string(user.Role),
		s.cfg.Security.JWTTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// ForgotPassword issues a short-lived reset token for the account behind
// the email. Delivery is the caller's concern; an unknown email returns
// repository.ErrUserNotFound so the handler can answer uniformly.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := security.GeneratePasswordResetToken(s.cfg.Security.JWTSecret, user.ID, resetTokenTTL)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset token issued")
	return token, nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	claims, err := security.ParsePasswordResetToken(token, s.cfg.Security.JWTSecret)
	if err != nil {
		return ErrInvalidResetToken
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, passwordHash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", claims.UserID).Msg("password reset")
	return nil
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile changes name and email. A changed email must not collide
// with another account.
func (s *AuthService) UpdateProfile(ctx context.Context, user models.User, input UpdateProfileInput) (models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" {
		return models.User{}, fmt.Errorf("name and email required")
	}

	if input.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
			return models.User{}, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, err
		}
	}

	if err := s.users.UpdateProfile(ctx, user.ID, input.Name, input.Email); err != nil {
		return models.User{}, err
	}

	user.Name = input.Name
	user.Email = input.Email
	return user, nil
}

// DeleteAccount removes the user and anything keyed to them that would
// otherwise dangle on the public site.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.testimonials.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete testimonials: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}
