package userRepo

import (
	"context"

	"gobarber/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// FindByID returns (nil, nil) when no user has the id.
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// CountProviders counts users with the id that are flagged as providers.
	CountProviders(ctx context.Context, id int64) (int64, error)
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
}
