package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gobarber/database/repository"
	"gobarber/models"
)

// GormUserRepo implements UserRepository using GORM.
type GormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

func newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// FindByID retrieves a user by their ID along with the avatar file.
func (r *GormUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var user models.User
	err := r.db.WithContext(ctx).Preload("Avatar").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve user with id %d: %w", id, err)
	}
	return &user, nil
}

func (r *GormUserRepo) CountProviders(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := newContext(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND provider = ?", id, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count providers with id %d: %w", id, err)
	}
	return n, nil
}

// Create inserts a new user record into the database.
func (r *GormUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s: %w", user.Email, repository.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
