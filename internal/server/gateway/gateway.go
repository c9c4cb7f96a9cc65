// Package gateway is the outward face of the trust core: install
// bootstrap, user and broker logins, service admin authorization and the
// end-to-end service challenge handshake.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trustkeeper/internal/server/challenge"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/keyring"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/dmitrijs2005/trustkeeper/internal/server/store"
	"github.com/dmitrijs2005/trustkeeper/internal/server/users"
)

// Prompter collects the super user's profile during install. Returning an
// error wrapping common.ErrCanceled stops the install.
type Prompter interface {
	PromptNewUser(ctx context.Context) (models.NewUser, error)
}

type Gateway struct {
	logger     logging.Logger
	cfg        *config.Config
	store      store.Store
	keyring    *keyring.Service
	challenges *challenge.Service
	prompter   Prompter
	api        users.API
	now        func() time.Time
}

func New(logger logging.Logger, cfg *config.Config, s store.Store, k *keyring.Service,
	c *challenge.Service, p Prompter) *Gateway {
	return &Gateway{
		logger:     logger.With("component", "gateway"),
		cfg:        cfg,
		store:      s,
		keyring:    k,
		challenges: c,
		prompter:   p,
		now:        time.Now,
	}
}

// Init prepares the domain: keys are created when missing, the cache and
// the keys are loaded, and the install runs when there is no super user.
// It returns the users known to api.
func (g *Gateway) Init(ctx context.Context, api users.API) (map[string]*models.UserRecord, error) {
	g.api = api

	if !g.store.KeysExist() {
		if err := g.keyring.GenerateDomainKeys(ctx); err != nil {
			return nil, err
		}
	}
	if err := g.store.LoadCache(ctx); err != nil {
		return nil, err
	}
	if _, err := g.keyring.LoadDomainKeys(ctx); err != nil {
		return nil, err
	}

	if _, ok := g.store.User(common.SuperUserUID); !ok {
		if err := g.Install(ctx); err != nil {
			return nil, err
		}
	}
	return api.GetUsers(ctx)
}

// Install creates the super user. Any failure other than a cancellation
// is logged and the prompt is repeated.
func (g *Gateway) Install(ctx context.Context) error {
	g.logger.Info(ctx, "this is the domain's installation, please create a super user",
		"domain", g.cfg.Domain, "env", g.cfg.Environment)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrCanceled, err)
		}

		err := g.install(ctx)
		if err == nil {
			g.logger.Info(ctx, "super user created", "uid", common.SuperUserUID)
			return nil
		}
		if errors.Is(err, common.ErrCanceled) {
			g.logger.Warn(ctx, "install canceled")
			return err
		}
		g.logger.Error(ctx, "install failed, retrying", "error", err)
	}
}

func (g *Gateway) install(ctx context.Context) error {
	details, err := g.prompter.PromptNewUser(ctx)
	if err != nil {
		return err
	}
	if details, err = g.api.SanitizeUser(ctx, details); err != nil {
		return err
	}
	if err := g.api.ValidatePassword(ctx, details.Password); err != nil {
		return err
	}
	if err := g.api.ValidateEmail(ctx, details.Email); err != nil {
		return err
	}

	hash, err := g.keyring.HashPassword(ctx, details.Password)
	if err != nil {
		return err
	}
	if _, err := g.store.SaveNewUser(ctx, common.SuperUserUID, details, common.SuperUserRole); err != nil {
		return err
	}
	return g.store.SaveUserPass(ctx, common.SuperUserUID, hash)
}

// ready fails with a 500 until Init has attached the users API.
func (g *Gateway) ready(ctx context.Context) error {
	if g.api == nil {
		return logging.Failure(ctx, g.logger, http.StatusInternalServerError,
			fmt.Errorf("%w: gateway is not initialized", common.ErrorInternal))
	}
	return nil
}

// LoginUser resolves username and checks password against the stored
// hash.
func (g *Gateway) LoginUser(ctx context.Context, username, password string) (*models.UserRecord, error) {
	if err := g.ready(ctx); err != nil {
		return nil, err
	}
	user, err := g.api.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	hash, _ := g.store.UserPass(user.Credentials.UID)
	if err := g.keyring.CheckPassword(ctx, password, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginBroker accepts token for serviceName when the token carries either
// a user whose username still matches the stored record, or the service
// itself.
func (g *Gateway) LoginBroker(ctx context.Context, serviceName, token string) error {
	claims, err := g.keyring.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	identity := claims.Identity
	if identity.User != nil {
		if err := g.ready(ctx); err != nil {
			return err
		}
		user, err := g.api.GetUserByID(ctx, identity.UID())
		if err != nil {
			return err
		}
		if user.Credentials.Username != identity.Username() {
			return logging.Invalid(ctx, g.logger, http.StatusForbidden, common.ErrTokenMismatch)
		}
		return nil
	}

	if identity.UID() != serviceName {
		return logging.Invalid(ctx, g.logger, http.StatusForbidden, common.ErrTokenMismatch)
	}
	return nil
}

// ValidateServiceAdmin authorizes user to deploy version of serviceName. An
// unseen service is registered with user as its owner; a known service
// gets the version added to its upgrade history. Ownership of a known
// service is not checked.
func (g *Gateway) ValidateServiceAdmin(ctx context.Context, user *models.UserRecord, serviceName, version, pkg string) (*models.ServiceRecord, error) {
	if !user.HasAnyRole(g.cfg.AdminRoles["service"]) {
		return nil, logging.Invalid(ctx, g.logger, http.StatusForbidden,
			fmt.Errorf("%w: %q", common.ErrNoAdminPermission, user.Credentials.Username))
	}

	service, ok := g.store.Service(serviceName)
	if !ok {
		return g.store.SaveNewService(ctx, serviceName, user.Credentials.UID, version, pkg)
	}

	if _, seen := service.Upgraded[version]; seen || service.Deployed.Version == version {
		return service, nil
	}
	if service.Upgraded == nil {
		service.Upgraded = map[string]models.Deployment{}
	}
	service.Upgraded[version] = models.Deployment{
		Time:    g.now().UTC(),
		By:      user.Credentials.UID,
		Version: version,
		Package: pkg,
	}
	if err := g.store.SaveService(ctx, service); err != nil {
		return nil, err
	}
	g.logger.Info(ctx, "service upgraded", "service", serviceName, "version", version, "by", user.Credentials.UID)
	return service, nil
}

// SetServiceChallenge issues a service challenge for serviceName, encrypted
// with the domain private key.
func (g *Gateway) SetServiceChallenge(ctx context.Context, serviceName string) (string, error) {
	text, err := g.challenges.GetChallenge(ctx, challenge.KindService, serviceName)
	if err != nil {
		return "", err
	}
	return g.keyring.EncryptString(ctx, text)
}

// ValidateServiceChallenge decrypts and parses a service's response and
// validates it.
func (g *Gateway) ValidateServiceChallenge(ctx context.Context, payload string) error {
	plaintext, err := g.keyring.DecryptPayload(ctx, payload)
	if err != nil {
		return err
	}

	var result models.ChallengeResult
	if err := json.Unmarshal(plaintext, &result); err != nil {
		return logging.Invalid(ctx, g.logger, http.StatusForbidden,
			fmt.Errorf("%w: %v", common.ErrInvalidPayload, err))
	}
	return g.challenges.ValidateChallenge(ctx, challenge.KindService, &result)
}

// Item returns one record of the service, user or device table.
func (g *Gateway) Item(ctx context.Context, table, uid string) (any, error) {
	return g.store.Item(ctx, table, uid)
}

func (g *Gateway) Users() map[string]*models.UserRecord {
	return g.store.Users()
}

// ServiceUser returns the user who first deployed serviceName.
func (g *Gateway) ServiceUser(ctx context.Context, serviceName string) (*models.UserRecord, error) {
	item, err := g.store.Item(ctx, store.TableService, serviceName)
	if err != nil {
		return nil, err
	}
	owner := item.(*models.ServiceRecord).Deployed.By

	item, err = g.store.Item(ctx, store.TableUser, owner)
	if err != nil {
		return nil, err
	}
	return item.(*models.UserRecord), nil
}

func (g *Gateway) ServiceToken(ctx context.Context, serviceName string) (string, error) {
	return g.keyring.NewServiceToken(ctx, serviceName)
}

func (g *Gateway) UserToken(ctx context.Context, user *models.UserRecord, expires time.Duration) (string, error) {
	return g.keyring.NewUserToken(ctx, user, expires)
}

func (g *Gateway) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return g.keyring.ValidateToken(ctx, token)
}

func (g *Gateway) PublicKeyPEM(ctx context.Context) (string, error) {
	return g.keyring.PublicKeyPEM(ctx)
}

func (g *Gateway) ValidatePublicKeyPEM(ctx context.Context, candidate string) error {
	return g.keyring.ValidatePublicKeyPEM(ctx, candidate)
}
