package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/auth"
	"taskmanager/internal/cache"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/notify"
	"taskmanager/internal/repository"
)

// RegisterInput is the validated signup payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Age      int
}

// UserPatch holds the profile fields to change. Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserService handles accounts and their sessions.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, user *model.User, token string) error
	LogoutAll(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User, patch UserPatch) (*model.User, error)
	Delete(ctx context.Context, user *model.User) error
}

type userService struct {
	repo       repository.UserRepository
	jwtService *auth.JWTService
	notifier   notify.Notifier
	cache      *cache.Client
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	jwtService *auth.JWTService,
	notifier notify.Notifier,
	cache *cache.Client,
) UserService {
	return &userService{
		repo:       repo,
		jwtService: jwtService,
		notifier:   notifier,
		cache:      cache,
	}
}

// Register creates the account, opens its first session and queues the
// welcome email. Mail problems never fail the signup.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, "", err
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         strings.TrimSpace(in.Name),
		Age:          in.Age,
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		return repo.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.notifier.SendWelcome(ctx, user.Email, user.Name)
	return user, token, nil
}

// Login checks the credentials and opens an additional session. Unknown
// email and wrong password are reported identically.
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := auth.ComparePassword(password, user.PasswordHash); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.repo.AddToken(ctx, user.ID, token); err != nil {
		return nil, "", fmt.Errorf("store token: %w", err)
	}

	return user, token, nil
}

// Logout ends only the session identified by token.
func (s *userService) Logout(ctx context.Context, user *model.User, token string) error {
	if err := s.repo.RemoveToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// LogoutAll ends every session of the user, the current one included.
func (s *userService) LogoutAll(ctx context.Context, user *model.User) error {
	if err := s.repo.ClearTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// Update applies patch to a copy of user and persists it. The caller's user
// value is left unchanged when anything fails.
func (s *userService) Update(ctx context.Context, user *model.User, patch UserPatch) (*model.User, error) {
	updated := *user

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		updated.Email = email
	}
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Age != nil {
		updated.Age = *patch.Age
	}
	if patch.Password != nil {
		hashedPassword, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hashedPassword
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &updated, nil
}

// Delete removes the account with its sessions and tasks, then queues the
// cancellation email.
func (s *userService) Delete(ctx context.Context, user *model.User) error {
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	_ = s.cache.Delete(ctx, cache.AvatarKey(user.ID))
	s.notifier.SendCancellation(ctx, user.Email, user.Name)
	return nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != self {
		return apperrors.ErrEmailTaken
	}
	// If error is not "record not found", return it (could be a database error)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// hashPassword reports passwords bcrypt cannot take as invalid input.
func hashPassword(password string) (string, error) {
	hashed, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError(err.Error())
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hashed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
