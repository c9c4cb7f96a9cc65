package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func pubkeyCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Print the domain public key, or compare a PEM file with it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				pem, err := os.ReadFile(check)
				if err != nil {
					return err
				}
				if err := gw().ValidatePublicKeyPEM(cmd.Context(), string(pem)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Public key matches.")
				return nil
			}

			pem, err := gw().PublicKeyPEM(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), pem)
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "PEM file to compare with the domain public key")
	return cmd
}
