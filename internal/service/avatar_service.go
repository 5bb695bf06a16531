package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/avatar"
	"taskmanager/internal/cache"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/repository"
)

// AvatarService stores normalized profile images and serves them through
// the redis cache.
type AvatarService interface {
	Upload(ctx context.Context, userID uuid.UUID, data []byte) error
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// AvatarCache is the slice of the redis cache the avatar service uses.
// *cache.Client satisfies it.
type AvatarCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type avatarService struct {
	repo  repository.UserRepository
	cache AvatarCache
	ttl   time.Duration
}

// NewAvatarService creates a new avatar service.
func NewAvatarService(repo repository.UserRepository, cache AvatarCache, ttl time.Duration) AvatarService {
	return &avatarService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// Upload replaces the user's avatar with a normalized copy of data.
func (s *avatarService) Upload(ctx context.Context, userID uuid.UUID, data []byte) error {
	normalized, err := avatar.Normalize(data)
	if err != nil {
		return err
	}

	if err := s.repo.SetAvatar(ctx, userID, normalized); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}

	// The next read refills the cache from MySQL. Writing the new bytes here
	// could lose to a concurrent miss that loaded the old ones.
	_ = s.cache.Delete(ctx, cache.AvatarKey(userID))
	return nil
}

// Get returns the PNG avatar of a user.
func (s *avatarService) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	// Try cache first
	if data, _ := s.cache.Get(ctx, cache.AvatarKey(userID)); len(data) > 0 {
		return data, nil
	}

	data, err := s.repo.GetAvatar(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.ErrNotFound
	}

	_ = s.cache.Set(ctx, cache.AvatarKey(userID), data, s.ttl)
	return data, nil
}

// Delete clears the user's avatar.
func (s *avatarService) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.SetAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.AvatarKey(userID))
	return nil
}
