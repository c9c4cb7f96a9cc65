package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/trustkeeper/internal/flagx"
	"github.com/dmitrijs2005/trustkeeper/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the config file. It uses timex.Duration
// for token lifetimes, which accepts both "12h" style strings and integer
// nanoseconds. The file may contain // and /* */ comments and trailing
// commas; they are stripped with jsonc before decoding.
type JsonConfig struct {
	Domain                 string              `json:"domain"`
	Environment            string              `json:"environment"`
	Storage                string              `json:"storage"`
	ScaffoldDir            string              `json:"scaffold_dir"`
	StartDir               string              `json:"start_dir"`
	ServiceTokenTTL        timex.Duration      `json:"service_token_ttl"`
	UserTokenTTL           timex.Duration      `json:"user_token_ttl"`
	AdminRoles             map[string][]string `json:"admin_roles"`
	ChallengeManifest      string              `json:"challenge_manifest"`
	ChallengeSources       []string            `json:"challenge_sources"`
	TrustedLibrary         string              `json:"trusted_library"`
	ChecksumMismatchPolicy string              `json:"checksum_mismatch_policy"`
	KeygenFailurePolicy    string              `json:"keygen_failure_policy"`
}

// parseJson loads configuration values from a JSONC file into config.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set nothing is loaded. An unreadable or malformed file panics, matching
// the flag parser.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	if err := config.LoadFile(jsonConfigFile); err != nil {
		panic(err)
	}
}

// LoadFile overlays the JSONC file at path onto c and validates the
// result. Only the fields present in the file override the values already
// in c.
func (c *Config) LoadFile(path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), jc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	jc.apply(c)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.Domain, c.Domain)
	setString(&config.Environment, c.Environment)
	setString(&config.Storage, c.Storage)
	setString(&config.ScaffoldDir, c.ScaffoldDir)
	setString(&config.StartDir, c.StartDir)
	setString(&config.ChallengeManifest, c.ChallengeManifest)
	setString(&config.TrustedLibrary, c.TrustedLibrary)

	if c.ServiceTokenTTL.Duration != 0 {
		config.ServiceTokenTTL = c.ServiceTokenTTL.Duration
	}
	if c.UserTokenTTL.Duration != 0 {
		config.UserTokenTTL = c.UserTokenTTL.Duration
	}
	if c.AdminRoles != nil {
		config.AdminRoles = c.AdminRoles
	}
	if c.ChallengeSources != nil {
		config.ChallengeSources = c.ChallengeSources
	}
	if c.ChecksumMismatchPolicy != "" {
		config.ChecksumMismatchPolicy = ChecksumMismatchPolicy(c.ChecksumMismatchPolicy)
	}
	if c.KeygenFailurePolicy != "" {
		config.KeygenFailurePolicy = KeygenFailurePolicy(c.KeygenFailurePolicy)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
