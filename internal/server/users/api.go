// Package users is the default user-management collaborator of the
// gateway: lookups over the user table plus the profile, password and
// email policies applied during install.
package users

import (
	"context"

	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

// API is what the gateway needs from user management. Applications with
// their own user policy supply a different implementation.
type API interface {
	GetUsers(ctx context.Context) (map[string]*models.UserRecord, error)
	GetUserByID(ctx context.Context, uid string) (*models.UserRecord, error)
	GetUserByName(ctx context.Context, username string) (*models.UserRecord, error)
	SanitizeUser(ctx context.Context, user models.NewUser) (models.NewUser, error)
	ValidatePassword(ctx context.Context, password string) error
	ValidateEmail(ctx context.Context, email string) error
}
