package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trustkeeper/attest"
)

func attestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attest <service> <source-root>",
		Short: "Run the service challenge against a local source tree",
		Long: "Issues a service challenge, answers it from <source-root> and validates the\n" +
			"answer. The first run for a version records its source checksum.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, root := args[0], args[1]

			pem, err := gw().PublicKeyPEM(ctx)
			if err != nil {
				return err
			}
			responder, err := attest.NewResponder(name, root, []byte(pem))
			if err != nil {
				return err
			}

			challenge, err := gw().SetServiceChallenge(ctx, name)
			if err != nil {
				return err
			}
			payload, err := responder.Respond(challenge)
			if err != nil {
				return err
			}
			if err := gw().ValidateServiceChallenge(ctx, payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s passed the service challenge\n", name)
			return nil
		},
	}
}
