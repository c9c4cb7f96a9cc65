// Package store persists the trust core's records: the domain key pair and
// the service, checksum, device, user and password tables. Every table is
// held in an in-memory cache; mutators update the cache before rewriting the
// one file they own.
package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

// Table names, used as cache keys and by Item.
const (
	TableService         = "service"
	TableServiceChecksum = "serviceChecksum"
	TableDevice          = "device"
	TableUser            = "user"
	TableUserPass        = "userPass"
)

// Store is the credential store used by the keyring, the challenge service
// and the gateway. There is no delete operation.
type Store interface {
	// LoadCache replaces the cache with the content of every persisted
	// table. A single failure fails the call and keeps the old cache.
	LoadCache(ctx context.Context) error
	// SaveCache rewrites every table from the cache.
	SaveCache(ctx context.Context) error

	KeysExist() bool
	LoadDomainKeys(ctx context.Context) (*models.DomainKeys, error)
	SavePrivateKey(ctx context.Context, pem []byte) (string, error)
	SavePublicKey(ctx context.Context, pem []byte) (string, error)

	SaveServiceChecksum(ctx context.Context, serviceName, version, sum string) error
	SaveNewService(ctx context.Context, serviceName, owner, version, pkg string) (*models.ServiceRecord, error)
	SaveService(ctx context.Context, service *models.ServiceRecord) error
	SaveNewUser(ctx context.Context, uid string, details models.NewUser, role string) (*models.UserRecord, error)
	SaveUserPass(ctx context.Context, uid, hash string) error

	Service(serviceName string) (*models.ServiceRecord, bool)
	ServiceChecksum(serviceName, version string) (string, bool)
	User(uid string) (*models.UserRecord, bool)
	Users() map[string]*models.UserRecord
	UserPass(uid string) (string, bool)
	Item(ctx context.Context, table, uid string) (any, error)
}

// New selects the backend named by cfg.Storage. Only the filesystem backend
// exists; any other name fails with common.ErrStoreNotImplemented.
func New(ctx context.Context, logger logging.Logger, cfg *config.Config) (Store, error) {
	switch cfg.Storage {
	case common.StorageFilesystem:
		return NewFileStore(ctx, logger, cfg)
	default:
		return nil, logging.Failure(ctx, logger, http.StatusInternalServerError,
			fmt.Errorf("%s: %w", cfg.Storage, common.ErrStoreNotImplemented))
	}
}
