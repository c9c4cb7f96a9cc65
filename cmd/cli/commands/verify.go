package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := gw().ValidateToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if service != "" {
				if err := gw().LoginBroker(cmd.Context(), service, args[0]); err != nil {
					return err
				}
			}

			data, err := json.MarshalIndent(claims, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "also check the token may log in to this service broker")
	return cmd
}
