// Package challenge issues and validates the source-integrity challenges a
// connecting service must answer before it is granted a token.
package challenge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/trustkeeper/attest"
	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/dmitrijs2005/trustkeeper/internal/server/store"
)

// KindService is the challenge kind answered by services.
const KindService = "service"

// saltSize is the length of the per-instance salt embedded in scripts.
const saltSize = 20

// Kind is a challenge procedure pair. Generate returns the raw script text
// for a requester; Validate checks a result against the script that was
// issued.
type Kind struct {
	Generate func(requester string) (string, error)
	Validate func(ctx context.Context, result *models.ChallengeResult) error
}

type Service struct {
	store  store.Store
	logger logging.Logger
	cfg    *config.Config
	salt   string

	mu    sync.RWMutex
	kinds map[string]Kind
	cache map[string]string
}

// New returns a Service with the service kind registered.
func New(s store.Store, logger logging.Logger, cfg *config.Config) (*Service, error) {
	salt, err := common.RandomString(saltSize)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:  s,
		logger: logger.With("component", "challenge"),
		cfg:    cfg,
		salt:   salt,
		kinds:  make(map[string]Kind),
		cache:  make(map[string]string),
	}
	svc.Register(KindService, Kind{
		Generate: svc.serviceScript,
		Validate: svc.validateService,
	})
	return svc, nil
}

// Register adds or replaces a challenge kind.
func (s *Service) Register(name string, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds[name] = kind
}

func (s *Service) kind(ctx context.Context, name string) (Kind, error) {
	s.mu.RLock()
	k, ok := s.kinds[name]
	s.mu.RUnlock()
	if !ok {
		return Kind{}, logging.Invalid(ctx, s.logger, http.StatusNotFound,
			fmt.Errorf("%w: %q", common.ErrKindNotFound, name))
	}
	return k, nil
}

// GetChallenge generates a challenge of the given kind for requester,
// canonicalizes it and remembers it as the requester's current challenge.
func (s *Service) GetChallenge(ctx context.Context, kind, requester string) (string, error) {
	k, err := s.kind(ctx, kind)
	if err != nil {
		return "", err
	}

	raw, err := k.Generate(requester)
	if err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, err)
	}
	text, err := attest.Canonicalize(raw)
	if err != nil {
		return "", logging.Failure(ctx, s.logger, http.StatusInternalServerError, err)
	}

	s.mu.Lock()
	s.cache[requester] = text
	s.mu.Unlock()

	s.logger.Debug(ctx, "challenge issued", "kind", kind, "requester", requester)
	return text, nil
}

// ValidateChallenge checks result with the validate procedure of kind.
func (s *Service) ValidateChallenge(ctx context.Context, kind string, result *models.ChallengeResult) error {
	k, err := s.kind(ctx, kind)
	if err != nil {
		return err
	}
	return k.Validate(ctx, result)
}

// Cached returns the challenge last issued to requester.
func (s *Service) Cached(requester string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.cache[requester]
	return text, ok
}

func (s *Service) serviceScript(string) (string, error) {
	sources := make([]string, len(s.cfg.ChallengeSources))
	for i, src := range s.cfg.ChallengeSources {
		sources[i] = fmt.Sprintf("%q", src)
	}

	return fmt.Sprintf(`# service source attestation
kind: %s
salt: %q
manifest: %q
sources: [%s]
trusted_library: %q
report: [%s]
`, KindService, s.salt, s.cfg.ChallengeManifest, strings.Join(sources, ", "),
		s.cfg.TrustedLibrary, strings.Join(attest.ReportFields, ", ")), nil
}

// validateService accepts a result whose challenge checksum matches the
// script issued to the service. The first result for a service version
// becomes the trusted source baseline for that version.
func (s *Service) validateService(ctx context.Context, result *models.ChallengeResult) error {
	issued, ok := s.Cached(result.ServiceName)
	if !ok || attest.Checksum(issued) != result.Challenge {
		return logging.Invalid(ctx, s.logger, http.StatusForbidden,
			fmt.Errorf("%w: %q", common.ErrChallengeSumMismatch, result.ServiceName))
	}

	baseline, ok := s.store.ServiceChecksum(result.ServiceName, result.Version)
	if !ok {
		if err := s.store.SaveServiceChecksum(ctx, result.ServiceName, result.Version, result.Src); err != nil {
			return err
		}
		s.logger.Info(ctx, "source baseline recorded", "service", result.ServiceName, "version", result.Version)
		return s.validateService(ctx, result)
	}

	if baseline != result.Src {
		if s.cfg.ChecksumMismatchPolicy == config.ChecksumMismatchReject {
			return logging.Invalid(ctx, s.logger, http.StatusForbidden,
				fmt.Errorf("%w: %s %s", common.ErrSourceMismatch, result.ServiceName, result.Version))
		}
		s.logger.Warn(ctx, "source checksum differs from baseline",
			"service", result.ServiceName, "version", result.Version, "policy", s.cfg.ChecksumMismatchPolicy)
	}
	return nil
}
