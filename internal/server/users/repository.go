package users

import "github.com/dmitrijs2005/trustkeeper/internal/server/models"

// Repository is the read side of the user table. store.Store satisfies it.
type Repository interface {
	User(uid string) (*models.UserRecord, bool)
	Users() map[string]*models.UserRecord
}
