package config

import "strings"

// Get resolves a dotted key against the config, for collaborators and
// operator tooling that address settings by name:
//
//	tokenExpiry.user, tokenExpiry.service, authServer.storage,
//	authServer.scaffoldDir, adminRoles.<resource>, challenge.manifest,
//	challenge.sources, challenge.trustedLibrary, policy.checksumMismatch,
//	policy.keygenFailure, domain, environment
//
// The second result is false for unknown keys.
func (c *Config) Get(key string) (any, bool) {
	if resource, ok := strings.CutPrefix(key, "adminRoles."); ok {
		roles, found := c.AdminRoles[resource]
		return roles, found
	}

	switch key {
	case "domain":
		return c.Domain, true
	case "environment":
		return c.Environment, true
	case "authServer.storage":
		return c.Storage, true
	case "authServer.scaffoldDir":
		return c.ScaffoldDir, true
	case "tokenExpiry.service":
		return c.ServiceTokenTTL, true
	case "tokenExpiry.user":
		return c.UserTokenTTL, true
	case "challenge.manifest":
		return c.ChallengeManifest, true
	case "challenge.sources":
		return c.ChallengeSources, true
	case "challenge.trustedLibrary":
		return c.TrustedLibrary, true
	case "policy.checksumMismatch":
		return c.ChecksumMismatchPolicy, true
	case "policy.keygenFailure":
		return c.KeygenFailurePolicy, true
	}
	return nil, false
}
