// Package keyring owns the domain key pair: generation, loading, token
// signing and verification, password hashing, and the payload cipher used
// by the challenge handshake.
package keyring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/cryptox"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/dmitrijs2005/trustkeeper/internal/server/store"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost factor for stored passwords.
const PasswordCost = 10

// Service is the keyring. Keys are loaded lazily and reloaded after
// regeneration.
type Service struct {
	store           store.Store
	logger          logging.Logger
	serviceTokenTTL time.Duration
	userTokenTTL    time.Duration
	keygenPolicy    config.KeygenFailurePolicy
	keyBits         int

	mu   sync.RWMutex
	keys *models.DomainKeys
}

func New(s store.Store, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		store:           s,
		logger:          logger.With("component", "keyring"),
		serviceTokenTTL: cfg.ServiceTokenTTL,
		userTokenTTL:    cfg.UserTokenTTL,
		keygenPolicy:    cfg.KeygenFailurePolicy,
		keyBits:         cryptox.DomainKeyBits,
	}
}

// GenerateDomainKeys creates and persists a new key pair and reports both
// paths. A failure is logged; it is returned only when the keygen failure
// policy is KeygenFailurePropagate.
func (s *Service) GenerateDomainKeys(ctx context.Context) error {
	err := s.generateDomainKeys(ctx)
	if err == nil {
		return nil
	}

	s.logger.Error(ctx, "domain key generation failed", "error", err)
	if s.keygenPolicy == config.KeygenFailurePropagate {
		return common.NewStatusError(http.StatusInternalServerError, err)
	}
	return nil
}

func (s *Service) generateDomainKeys(ctx context.Context) error {
	privatePEM, publicPEM, err := cryptox.GenerateKeyPair(s.keyBits)
	if err != nil {
		return err
	}

	privatePath, err := s.store.SavePrivateKey(ctx, privatePEM)
	if err != nil {
		return err
	}
	publicPath, err := s.store.SavePublicKey(ctx, publicPEM)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.keys = nil
	s.mu.Unlock()

	s.logger.Info(ctx, "domain keys created", "private_key", privatePath, "public_key", publicPath)
	return nil
}

// LoadDomainKeys loads the key pair from the store. When the files cannot
// be read or parsed, a new pair is generated and loaded instead.
func (s *Service) LoadDomainKeys(ctx context.Context) (*models.DomainKeys, error) {
	keys, err := s.store.LoadDomainKeys(ctx)
	if err != nil {
		s.logger.Warn(ctx, "regenerating domain keys", "error", err)
		if genErr := s.GenerateDomainKeys(ctx); genErr != nil {
			return nil, genErr
		}
		keys, err = s.store.LoadDomainKeys(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	return keys, nil
}

// domainKeys returns the loaded keys, loading them on first use.
func (s *Service) domainKeys(ctx context.Context) (*models.DomainKeys, error) {
	s.mu.RLock()
	keys := s.keys
	s.mu.RUnlock()
	if keys != nil {
		return keys, nil
	}
	return s.LoadDomainKeys(ctx)
}

// NewServiceToken issues a token for a registered service. A service that
// is not in the store is a 404.
func (s *Service) NewServiceToken(ctx context.Context, serviceName string) (string, error) {
	service, ok := s.store.Service(serviceName)
	if !ok {
		return "", logging.Invalid(ctx, s.logger, http.StatusNotFound,
			fmt.Errorf("%w: %q", common.ErrServiceNotRegistered, serviceName))
	}
	return s.sign(ctx, models.Identity{Service: service}, s.serviceTokenTTL)
}

// NewUserToken issues a token for user. A zero expires uses the configured
// user token lifetime.
func (s *Service) NewUserToken(ctx context.Context, user *models.UserRecord, expires time.Duration) (string, error) {
	if expires == 0 {
		expires = s.userTokenTTL
	}
	return s.sign(ctx, models.Identity{User: user}, expires)
}

func (s *Service) sign(ctx context.Context, identity models.Identity, ttl time.Duration) (string, error) {
	keys, err := s.domainKeys(ctx)
	if err != nil {
		return "", err
	}
	token, err := auth.GenerateToken(identity, keys.Signer, ttl)
	if err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, err)
	}
	return token, nil
}

// ValidateToken verifies token against the domain public key and returns
// its claims. Every verification failure is a 403 common.ErrInvalidToken.
func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	keys, err := s.domainKeys(ctx)
	if err != nil {
		return nil, err
	}
	claims, err := auth.ParseToken(token, keys.Verifier)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, logging.Invalid(ctx, s.logger, http.StatusForbidden, common.ErrInvalidToken)
	}
	return claims, nil
}

func (s *Service) HashPassword(ctx context.Context, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, err)
	}
	return string(hash), nil
}

// CheckPassword fails with a 403 common.ErrIncorrectPassword both when the
// password does not match and when bcrypt itself fails, e.g. on a malformed
// hash.
func (s *Service) CheckPassword(ctx context.Context, password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Debug(ctx, "password check fault", "error", err)
		}
		return logging.Invalid(ctx, s.logger, http.StatusForbidden, common.ErrIncorrectPassword)
	}
	return nil
}

// PublicKeyPEM returns the exported domain public key.
func (s *Service) PublicKeyPEM(ctx context.Context) (string, error) {
	keys, err := s.domainKeys(ctx)
	if err != nil {
		return "", err
	}
	return keys.PublicPEM, nil
}

// ValidatePublicKeyPEM compares candidate byte for byte with the domain
// public key.
func (s *Service) ValidatePublicKeyPEM(ctx context.Context, candidate string) error {
	pem, err := s.PublicKeyPEM(ctx)
	if err != nil {
		return err
	}
	if pem != candidate {
		return logging.Invalid(ctx, s.logger, http.StatusForbidden, common.ErrPublicKeyInvalid)
	}
	return nil
}

// EncryptString encrypts plaintext with the domain private key. Any holder of
// the public key can decrypt it.
func (s *Service) EncryptString(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, common.ErrEmptyPlaintext)
	}
	keys, err := s.domainKeys(ctx)
	if err != nil {
		return "", err
	}
	ciphertext, err := keys.Cipher.EncryptPrivate([]byte(plaintext))
	if err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, err)
	}
	return ciphertext, nil
}

// DecryptPayload decrypts a payload a requester encrypted with the domain
// public key.
func (s *Service) DecryptPayload(ctx context.Context, ciphertext string) ([]byte, error) {
	keys, err := s.domainKeys(ctx)
	if err != nil {
		return nil, err
	}
	plaintext, err := keys.Cipher.DecryptPrivate(ciphertext)
	if err != nil {
		return nil, logging.Invalid(ctx, s.logger, http.StatusForbidden, fmt.Errorf("%w: %v", common.ErrInvalidPayload, err))
	}
	return plaintext, nil
}
