package flagx

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.jsonc", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "conf.jsonc"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.jsonc", "-a", "localhost"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.jsonc"},
		},
		{
			name:         "both short and long present, preserve order",
			args:         []string{"--config=first.jsonc", "-c", "second.jsonc", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.jsonc", "-c", "second.jsonc"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "value that looks like a flag but with equals form",
			args:         []string{"--config=--weird.jsonc"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.jsonc"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-a", "localhost:8080", "-c", "conf.jsonc", "--other", "x"},
			allowedFlags: []string{"-c", "-a"},
			want:         []string{"-a", "localhost:8080", "-c", "conf.jsonc"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "path with spaces remains single arg",
			args:         []string{"-c", "/home/user/conf.jsonc"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "/home/user/conf.jsonc"},
		},
		{
			name:         "do not treat next dash-starting token as value",
			args:         []string{"-c", "--config=alt.jsonc"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "--config=alt.jsonc"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.jsonc", "-c", "two.jsonc"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.jsonc", "-c", "two.jsonc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.jsonc"}
		assert.Equal(t, "/path/short.jsonc", ConfigPath())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.jsonc"}
		assert.Equal(t, "/path/long.jsonc", ConfigPath())
	})

	t.Run("double dash with equals", func(t *testing.T) {
		os.Args = []string{"testbin", "--config=/path/eq.jsonc"}
		assert.Equal(t, "/path/eq.jsonc", ConfigPath())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, ConfigPath())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.jsonc", "-config", "/path/2.jsonc"}
		assert.Equal(t, "/path/2.jsonc", ConfigPath())
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/etc/trustkeeper.jsonc")
		os.Args = []string{"testbin"}
		assert.Equal(t, "/etc/trustkeeper.jsonc", ConfigPath())
	})

	t.Run("flag beats environment", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/etc/trustkeeper.jsonc")
		os.Args = []string{"testbin", "-c", "/path/flag.jsonc"}
		assert.Equal(t, "/path/flag.jsonc", ConfigPath())
	})
}
