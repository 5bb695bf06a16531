package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskmanager/internal/cache"
	apperrors "taskmanager/internal/errors"
)

// noCache behaves like an unconfigured redis: every read misses.
var noCache *cache.Client

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 90))))
	return buf.Bytes()
}

func TestAvatarService_Upload_StoresSquarePNG(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("SetAvatar", mock.Anything, userID, mock.MatchedBy(func(data []byte) bool {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		return err == nil && format == "png" && cfg.Width == 250 && cfg.Height == 250
	})).Return(nil)

	service := NewAvatarService(mockRepo, noCache, time.Minute)
	require.NoError(t, service.Upload(context.Background(), userID, smallPNG(t)))
	mockRepo.AssertExpectations(t)
}

func TestAvatarService_Upload_InvalidatesCachedAvatar(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("SetAvatar", mock.Anything, userID, mock.Anything).Return(nil)
	mockCache := new(MockAvatarCache)
	mockCache.On("Delete", mock.Anything, cache.AvatarKey(userID)).Return(nil)

	service := NewAvatarService(mockRepo, mockCache, time.Minute)
	require.NoError(t, service.Upload(context.Background(), userID, smallPNG(t)))

	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAvatarService_Upload_StoreFailureKeepsCache(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("SetAvatar", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	mockCache := new(MockAvatarCache)

	service := NewAvatarService(mockRepo, mockCache, time.Minute)
	err := service.Upload(context.Background(), uuid.New(), smallPNG(t))

	assert.ErrorIs(t, err, assert.AnError)
	mockCache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAvatarService_Get_FillsCacheOnMiss(t *testing.T) {
	userID := uuid.New()
	stored := smallPNG(t)
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetAvatar", mock.Anything, userID).Return(stored, nil)
	mockCache := new(MockAvatarCache)
	mockCache.On("Get", mock.Anything, cache.AvatarKey(userID)).Return(nil, nil)
	mockCache.On("Set", mock.Anything, cache.AvatarKey(userID), stored, time.Minute).Return(nil)

	data, err := NewAvatarService(mockRepo, mockCache, time.Minute).Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, stored, data)
	mockCache.AssertExpectations(t)
}

func TestAvatarService_Upload_RejectsNonImage(t *testing.T) {
	mockRepo := new(MockUserRepository)

	service := NewAvatarService(mockRepo, noCache, time.Minute)
	err := service.Upload(context.Background(), uuid.New(), []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
	mockRepo.AssertNotCalled(t, "SetAvatar", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvatarService_Get(t *testing.T) {
	stored := smallPNG(t)

	tests := []struct {
		name    string
		data    []byte
		err     error
		wantErr error
	}{
		{name: "stored avatar", data: stored},
		{name: "no avatar", data: nil, wantErr: apperrors.ErrNotFound},
		{name: "no user", err: gorm.ErrRecordNotFound, wantErr: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			mockRepo := new(MockUserRepository)
			mockRepo.On("GetAvatar", mock.Anything, userID).Return(tt.data, tt.err)

			data, err := NewAvatarService(mockRepo, noCache, time.Minute).Get(context.Background(), userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored, data)
		})
	}
}

func TestAvatarService_Delete(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("SetAvatar", mock.Anything, userID, []byte(nil)).Return(nil)

	require.NoError(t, NewAvatarService(mockRepo, noCache, time.Minute).Delete(context.Background(), userID))
	mockRepo.AssertExpectations(t)
}
