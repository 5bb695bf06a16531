package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmanager/internal/model"
)

// UserRepository defines user, session token and avatar persistence.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Session tokens
	AddToken(ctx context.Context, userID uuid.UUID, token string) error
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokens(ctx context.Context, userID uuid.UUID) error
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// Avatar
	SetAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Tokens", "Tasks").Create(user).Error
}

// Update saves profile fields. The avatar column is owned by SetAvatar.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("name", "email", "password", "age", "updated_at").
		Updates(user).Error
}

// Delete removes the user together with its sessions and tasks.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Omit("avatar").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Omit("avatar").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Create(&model.Token{UserID: userID, Token: token}).Error
}

func (r *userRepository) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&model.Token{}).Error
}

func (r *userRepository) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Token{}).Error
}

func (r *userRepository) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Token{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatar []byte) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("avatar", avatar).Error
}

// GetAvatar returns the stored image, or nil when the user has none.
func (r *userRepository) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Select("id", "avatar").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return user.Avatar, nil
}

// WithTransaction executes a function within a database transaction.
func (r *userRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &userRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
