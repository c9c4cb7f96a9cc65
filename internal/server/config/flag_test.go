package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-d", "acme", "-e", "staging", "-s", "filesystem", "-r", "/srv/acme",
			"-t", "30", "-u", "5", "-x", "reject", "-k", "propagate",
		}, expectPanic: false,
			expected: &Config{
				Domain:                 "acme",
				Environment:            "staging",
				Storage:                "filesystem",
				StartDir:               "/srv/acme",
				ServiceTokenTTL:        30 * time.Minute,
				UserTokenTTL:           5 * time.Minute,
				ChecksumMismatchPolicy: ChecksumMismatchReject,
				KeygenFailurePolicy:    KeygenFailurePropagate,
			}},
		{name: "foreign flags are ignored", args: []string{"cmd", "--verbose", "-d", "acme"},
			expectPanic: false,
			expected: &Config{
				Domain: "acme",
			}},
		{name: "bad minutes", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
