package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

// Validate rejects policy names other than the declared ones and token
// lifetimes that are not positive.
func (c *Config) Validate() error {
	var errs []error

	switch c.ChecksumMismatchPolicy {
	case ChecksumMismatchIgnore, ChecksumMismatchReject:
	default:
		errs = append(errs, fmt.Errorf("%w: checksum mismatch policy %q, want %q or %q",
			ErrInvalidConfig, c.ChecksumMismatchPolicy, ChecksumMismatchIgnore, ChecksumMismatchReject))
	}

	switch c.KeygenFailurePolicy {
	case KeygenFailureSwallow, KeygenFailurePropagate:
	default:
		errs = append(errs, fmt.Errorf("%w: keygen failure policy %q, want %q or %q",
			ErrInvalidConfig, c.KeygenFailurePolicy, KeygenFailureSwallow, KeygenFailurePropagate))
	}

	if c.ServiceTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: service token ttl %s", ErrInvalidConfig, c.ServiceTokenTTL))
	}
	if c.UserTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: user token ttl %s", ErrInvalidConfig, c.UserTokenTTL))
	}

	return errors.Join(errs...)
}
