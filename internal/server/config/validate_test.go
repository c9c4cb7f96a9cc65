package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{name: "defaults", modify: func(*Config) {}, ok: true},
		{name: "reject and propagate", modify: func(c *Config) {
			c.ChecksumMismatchPolicy = ChecksumMismatchReject
			c.KeygenFailurePolicy = KeygenFailurePropagate
		}, ok: true},
		{name: "capitalized policy", modify: func(c *Config) { c.ChecksumMismatchPolicy = "Reject" }},
		{name: "empty policy", modify: func(c *Config) { c.ChecksumMismatchPolicy = "" }},
		{name: "unknown keygen policy", modify: func(c *Config) { c.KeygenFailurePolicy = "panic" }},
		{name: "zero service ttl", modify: func(c *Config) { c.ServiceTokenTTL = 0 }},
		{name: "negative user ttl", modify: func(c *Config) { c.UserTokenTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			tt.modify(c)

			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestLoadFile_RejectsUnknownPolicy(t *testing.T) {
	path := writeTempConfig(t, "", "", `{"checksum_mismatch_policy": "Reject"}`)

	cfg := &Config{}
	cfg.LoadDefaults()
	err := cfg.LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), `"Reject"`)
}

func TestLoadConfig_PanicsOnInvalidFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv(flagx.ConfigEnv, "")

	os.Args = []string{"cmd", "-x", "strict"}
	assert.Panics(t, func() { LoadConfig() })

	os.Args = []string{"cmd", "-u", "0"}
	assert.Panics(t, func() { LoadConfig() })
}
