package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
	"github.com/dmitrijs2005/trustkeeper/internal/filex"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

const (
	tablePerm      os.FileMode = 0o600
	privateKeyPerm os.FileMode = 0o400
	publicKeyPerm  os.FileMode = 0o644
)

// FileStore implements Store on the local filesystem.
//
// mu guards the cache. Each table also has its own writer lock, held from
// the cache update until the file rewrite finishes, so writes to one file
// are serialized and always persist the latest snapshot. Readers only take
// mu and see an update as soon as it is applied, even while the file is
// still being written.
type FileStore struct {
	logger logging.Logger
	paths  Paths
	now    func() time.Time

	mu    sync.RWMutex
	cache cache

	writers map[string]*sync.Mutex
	files   map[string]string
	keysMu  sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore resolves the layout, creates missing directories and
// initializes every missing table file to an empty mapping.
func NewFileStore(ctx context.Context, logger logging.Logger, cfg *config.Config) (*FileStore, error) {
	paths, err := ResolvePaths(cfg.StartDir, cfg.ScaffoldDir, cfg.Domain, cfg.Environment)
	if err != nil {
		return nil, logging.Failure(ctx, logger, http.StatusInternalServerError, err)
	}
	if err := filex.EnsureDirs(paths.dirs()...); err != nil {
		return nil, logging.Failure(ctx, logger, http.StatusInternalServerError, err)
	}

	s := &FileStore{
		logger:  logger.With("component", "store"),
		paths:   paths,
		now:     time.Now,
		cache:   newCache(),
		writers: map[string]*sync.Mutex{},
		files:   paths.tables(),
	}

	for name, path := range s.files {
		s.writers[name] = &sync.Mutex{}
		if filex.Exists(path) {
			continue
		}
		if err := filex.AtomicWriteFile(path, []byte("{}\n"), tablePerm); err != nil {
			return nil, logging.Failure(ctx, logger, http.StatusInternalServerError,
				fmt.Errorf("init %s: %w", path, err))
		}
	}

	return s, nil
}

// Paths returns the resolved layout.
func (s *FileStore) Paths() Paths {
	return s.paths
}

func (s *FileStore) LoadCache(ctx context.Context) error {
	next := newCache()
	for _, name := range s.tableNames() {
		path := s.files[name]
		data, err := os.ReadFile(path)
		if err != nil {
			return logging.Failure(ctx, s.logger, http.StatusInternalServerError, fmt.Errorf("read %s: %w", path, err))
		}
		if err := json.Unmarshal(data, next.table(name)); err != nil {
			return logging.Failure(ctx, s.logger, http.StatusInternalServerError, fmt.Errorf("decode %s: %w", path, err))
		}
	}
	next.normalize()

	s.mu.Lock()
	s.cache = next
	s.mu.Unlock()

	s.logger.Debug(ctx, "cache loaded", "store", s.paths.Store)
	return nil
}

func (s *FileStore) SaveCache(ctx context.Context) error {
	var errs []error
	for _, name := range s.tableNames() {
		if err := s.update(ctx, name, func(*cache) {}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) KeysExist() bool {
	return filex.Exists(s.paths.PrivateKey) && filex.Exists(s.paths.PublicKey)
}

func (s *FileStore) LoadDomainKeys(ctx context.Context) (*models.DomainKeys, error) {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	keysErr := func(err error) error {
		return logging.Failure(ctx, s.logger, http.StatusInternalServerError,
			fmt.Errorf("%w: %v", common.ErrKeysUnavailable, err))
	}

	privPEM, err := os.ReadFile(s.paths.PrivateKey)
	if err != nil {
		return nil, keysErr(err)
	}
	pubPEM, err := os.ReadFile(s.paths.PublicKey)
	if err != nil {
		return nil, keysErr(err)
	}

	priv, err := cryptox.ParsePrivateKeyPEM(privPEM)
	if err != nil {
		return nil, keysErr(err)
	}
	pub, err := cryptox.ParsePublicKeyPEM(pubPEM)
	if err != nil {
		return nil, keysErr(err)
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, keysErr(errors.New("public key does not match private key"))
	}

	return &models.DomainKeys{
		Signer:    priv,
		Verifier:  pub,
		Cipher:    cryptox.NewRSACipher(priv, pub),
		PublicPEM: string(pubPEM),
	}, nil
}

func (s *FileStore) SavePrivateKey(ctx context.Context, pem []byte) (string, error) {
	return s.saveKey(ctx, s.paths.PrivateKey, pem, privateKeyPerm)
}

func (s *FileStore) SavePublicKey(ctx context.Context, pem []byte) (string, error) {
	return s.saveKey(ctx, s.paths.PublicKey, pem, publicKeyPerm)
}

func (s *FileStore) saveKey(ctx context.Context, path string, pem []byte, perm os.FileMode) (string, error) {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	if err := filex.AtomicWriteFile(path, pem, perm); err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, fmt.Errorf("write %s: %w", path, err))
	}
	return path, nil
}

func (s *FileStore) SaveServiceChecksum(ctx context.Context, serviceName, version, sum string) error {
	return s.update(ctx, TableServiceChecksum, func(c *cache) {
		if c.serviceChecksum[serviceName] == nil {
			c.serviceChecksum[serviceName] = map[string]string{}
		}
		c.serviceChecksum[serviceName][version] = sum
	})
}

func (s *FileStore) SaveNewService(ctx context.Context, serviceName, owner, version, pkg string) (*models.ServiceRecord, error) {
	service := models.NewServiceRecord(serviceName, owner, version, pkg, s.now())
	if err := s.SaveService(ctx, service); err != nil {
		return nil, err
	}
	return copyService(service), nil
}

func (s *FileStore) SaveService(ctx context.Context, service *models.ServiceRecord) error {
	stored := copyService(service)
	return s.update(ctx, TableService, func(c *cache) {
		c.service[stored.Credentials.UID] = stored
	})
}

func (s *FileStore) SaveNewUser(ctx context.Context, uid string, details models.NewUser, role string) (*models.UserRecord, error) {
	user := models.NewUserRecord(uid, details, role)
	stored := copyUser(user)
	if err := s.update(ctx, TableUser, func(c *cache) {
		c.user[uid] = stored
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *FileStore) SaveUserPass(ctx context.Context, uid, hash string) error {
	return s.update(ctx, TableUserPass, func(c *cache) {
		c.userPass[uid] = hash
	})
}

func (s *FileStore) Service(serviceName string) (*models.ServiceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	service, ok := s.cache.service[serviceName]
	if !ok {
		return nil, false
	}
	return copyService(service), true
}

func (s *FileStore) ServiceChecksum(serviceName, version string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.cache.serviceChecksum[serviceName][version]
	return sum, ok
}

func (s *FileStore) User(uid string) (*models.UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.cache.user[uid]
	if !ok {
		return nil, false
	}
	return copyUser(user), true
}

func (s *FileStore) Users() map[string]*models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make(map[string]*models.UserRecord, len(s.cache.user))
	for uid, user := range s.cache.user {
		users[uid] = copyUser(user)
	}
	return users
}

func (s *FileStore) UserPass(uid string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.cache.userPass[uid]
	return hash, ok
}

// Item returns one record of the service, user or device table. Missing
// records and unknown tables are 404s. Secret tables are not exposed.
func (s *FileStore) Item(ctx context.Context, table, uid string) (any, error) {
	var (
		item any
		ok   bool
	)
	switch table {
	case TableService:
		item, ok = s.Service(uid)
	case TableUser:
		item, ok = s.User(uid)
	case TableDevice:
		s.mu.RLock()
		item, ok = s.cache.device[uid]
		s.mu.RUnlock()
	}
	if !ok {
		return nil, logging.Invalid(ctx, s.logger, http.StatusNotFound,
			fmt.Errorf("%w: %s %q", common.ErrorNotFound, table, uid))
	}
	return item, nil
}

// update applies mutate to the cache and rewrites the named table file.
func (s *FileStore) update(ctx context.Context, name string, mutate func(c *cache)) error {
	w := s.writers[name]
	w.Lock()
	defer w.Unlock()

	s.mu.Lock()
	mutate(&s.cache)
	data, err := json.MarshalIndent(s.cache.table(name), "", "    ")
	s.mu.Unlock()
	if err != nil {
		return logging.Failure(ctx, s.logger, http.StatusInternalServerError, fmt.Errorf("encode %s: %w", name, err))
	}

	path := s.files[name]
	if err := filex.AtomicWriteFile(path, append(data, '\n'), tablePerm); err != nil {
		return logging.Failure(ctx, s.logger, http.StatusInternalServerError, fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}

func (s *FileStore) tableNames() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
