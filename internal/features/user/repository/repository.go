package repository

import (
	"context"
	"errors"

	"agora-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetStatus читает только статус, кэш записей его не хранит
	GetStatus(ctx context.Context, id int64) (string, error)
	Update(ctx context.Context, user *models.User) error
}
