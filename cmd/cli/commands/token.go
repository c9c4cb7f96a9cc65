package commands

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trustkeeper/internal/common"
	"github.com/dmitrijs2005/trustkeeper/internal/prompt"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue identity tokens",
	}
	cmd.AddCommand(userTokenCmd(), serviceTokenCmd())
	return cmd
}

func userTokenCmd() *cobra.Command {
	var expires time.Duration

	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Log in and print a user token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := login(cmd, args[0])
			if err != nil {
				return err
			}
			token, err := gw().UserToken(cmd.Context(), user, expires)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&expires, "expires", 0, "token lifetime (default from config)")
	return cmd
}

func serviceTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "service <name>",
		Short: "Print a token for a registered service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := gw().ServiceToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// login asks for the password of username and checks it.
func login(cmd *cobra.Command, username string) (*models.UserRecord, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	pw, err := prompt.GetPassword(reader, int(os.Stdin.Fd()), "Password for "+username, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	return gw().LoginUser(cmd.Context(), username, string(pw))
}
