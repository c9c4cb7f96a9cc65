package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trustkeeper/internal/flagx"
	"github.com/dmitrijs2005/trustkeeper/internal/prompt"
	"github.com/dmitrijs2005/trustkeeper/internal/server"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/gateway"
)

var (
	cfg    *config.Config
	appCtx *server.App

	configPath string
	overrides  config.Config
	serviceTTL int
	userTTL    int
	checksumX  string
	keygenK    string
)

func Execute() error {
	return newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute()
}

func newRootCmd(in io.Reader, out, logOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "trustkeeper",
		Short:        "Domain keys, identity tokens and service attestation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = loadConfig(cmd); err != nil {
				return err
			}

			prompter := prompt.NewTerminal(in, out, int(os.Stdin.Fd()))
			appCtx, err = server.NewApp(cmd.Context(), cfg, prompter, logOut)
			if err != nil {
				return err
			}
			_, err = appCtx.Init(cmd.Context())
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(logOut)

	f := root.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "", "JSONC config file (default $"+flagx.ConfigEnv+")")
	f.StringVarP(&overrides.Domain, "domain", "d", "", "domain served by this key pair")
	f.StringVarP(&overrides.Environment, "env", "e", "", "environment")
	f.StringVarP(&overrides.Storage, "storage", "s", "", "storage backend")
	f.StringVarP(&overrides.StartDir, "root", "r", "", "start directory for the scaffold search")
	f.IntVarP(&serviceTTL, "service-ttl", "t", 0, "service token validity (in minutes)")
	f.IntVarP(&userTTL, "user-ttl", "u", 0, "user token validity (in minutes)")
	f.StringVarP(&checksumX, "checksum-policy", "x", "", "checksum mismatch policy (ignore|reject)")
	f.StringVarP(&keygenK, "keygen-policy", "k", "", "key generation failure policy (swallow|propagate)")

	root.AddCommand(initCmd(), pubkeyCmd(), tokenCmd(), verifyCmd(), deployCmd(),
		attestCmd(), getCmd(), configCmd())
	return root
}

// gw is the gateway of the initialized app.
func gw() *gateway.Gateway {
	return appCtx.Gateway()
}
