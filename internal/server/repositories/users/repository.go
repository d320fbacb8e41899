// Package users declares the server-side user repository and its
// PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/supportdesk/internal/server/models"
)

type Repository interface {
	// Create stores user, assigning ID and CreatedAt. A taken email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByEmail returns common.ErrorNotFound when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns common.ErrorNotFound when no user matches.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
