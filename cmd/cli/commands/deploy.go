package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deployCmd() *cobra.Command {
	var (
		admin string
		pkg   string
	)

	cmd := &cobra.Command{
		Use:   "deploy <service> <version>",
		Short: "Authorize a deployment, registering the service on first use",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := login(cmd, admin)
			if err != nil {
				return err
			}
			service, err := gw().ValidateServiceAdmin(cmd.Context(), user, args[0], args[1], pkg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s deployed (owner %s)\n",
				service.Credentials.UID, service.CurrentVersion(), service.Deployed.By)
			return nil
		},
	}
	cmd.Flags().StringVar(&admin, "admin", "", "admin username")
	cmd.Flags().StringVar(&pkg, "package", "", "package descriptor")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}
