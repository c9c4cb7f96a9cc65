// Package config handles configuration for the trust core, including
// defaults, a JSONC overlay, and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
)

// ChecksumMismatchPolicy decides what happens when a service reports a
// source checksum that differs from the baseline already trusted for that
// version.
type ChecksumMismatchPolicy string

const (
	// ChecksumMismatchIgnore logs the mismatch and accepts the response.
	ChecksumMismatchIgnore ChecksumMismatchPolicy = "ignore"
	// ChecksumMismatchReject fails the challenge with a 403.
	ChecksumMismatchReject ChecksumMismatchPolicy = "reject"
)

// KeygenFailurePolicy decides whether a failed domain key generation is
// reported to the caller or only logged.
type KeygenFailurePolicy string

const (
	KeygenFailureSwallow   KeygenFailurePolicy = "swallow"
	KeygenFailurePropagate KeygenFailurePolicy = "propagate"
)

// Config holds runtime settings for the trust core.
//
// Fields:
//   - Domain / Environment: scope of the key pair and the persisted files.
//   - Storage: storage backend; only "filesystem" is implemented.
//   - ScaffoldDir: name of the directory the store root is resolved to.
//   - StartDir: where the upward scaffold search starts (executable dir when empty).
//   - ServiceTokenTTL / UserTokenTTL: token lifetimes.
//   - AdminRoles: per-resource role allowlists, e.g. AdminRoles["service"].
//   - ChallengeManifest / ChallengeSources / TrustedLibrary: paths, relative
//     to the requester's root, that the service challenge asks it to hash.
//   - ChecksumMismatchPolicy / KeygenFailurePolicy: see the policy types.
type Config struct {
	Domain                 string
	Environment            string
	Storage                string
	ScaffoldDir            string
	StartDir               string
	ServiceTokenTTL        time.Duration
	UserTokenTTL           time.Duration
	AdminRoles             map[string][]string
	ChallengeManifest      string
	ChallengeSources       []string
	TrustedLibrary         string
	ChecksumMismatchPolicy ChecksumMismatchPolicy
	KeygenFailurePolicy    KeygenFailurePolicy
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Domain = "local"
	c.Environment = "development"
	c.Storage = common.StorageFilesystem
	c.ScaffoldDir = "trustScaffold"
	c.StartDir = ""
	c.ServiceTokenTTL = 12 * time.Hour
	c.UserTokenTTL = 1 * time.Hour
	c.AdminRoles = map[string][]string{
		"service": {common.SuperUserRole, "admin"},
	}
	c.ChallengeManifest = "VERSION"
	c.ChallengeSources = []string{"go.mod", "cmd", "internal"}
	c.TrustedLibrary = "vendor/github.com/dmitrijs2005/trustkeeper/attest"
	c.ChecksumMismatchPolicy = ChecksumMismatchIgnore
	c.KeygenFailurePolicy = KeygenFailureSwallow
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSONC file and finally from command-line flags. A
// result that fails Validate panics, like a malformed file or flag.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
