package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trustkeeper/internal/flagx"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
)

// loadConfig applies defaults, then the config file, then the flags set on
// the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := &config.Config{}
	c.LoadDefaults()

	path := configPath
	if path == "" {
		path = os.Getenv(flagx.ConfigEnv)
	}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("domain") {
		c.Domain = overrides.Domain
	}
	if changed("env") {
		c.Environment = overrides.Environment
	}
	if changed("storage") {
		c.Storage = overrides.Storage
	}
	if changed("root") {
		c.StartDir = overrides.StartDir
	}
	if changed("service-ttl") {
		c.ServiceTokenTTL = time.Duration(serviceTTL) * time.Minute
	}
	if changed("user-ttl") {
		c.UserTokenTTL = time.Duration(userTTL) * time.Minute
	}
	if changed("checksum-policy") {
		c.ChecksumMismatchPolicy = config.ChecksumMismatchPolicy(checksumX)
	}
	if changed("keygen-policy") {
		c.KeygenFailurePolicy = config.KeygenFailurePolicy(keygenK)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <dotted.key>",
		Short: "Print one effective setting, e.g. tokenExpiry.user",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := cfg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if d, isDuration := v.(time.Duration); isDuration {
				v = d.String()
			}
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
