package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the domain keys and the super user if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			users := gw().Users()
			uids := make([]string, 0, len(users))
			for uid := range users {
				uids = append(uids, uid)
			}
			sort.Strings(uids)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Domain %s/%s ready.\n", cfg.Domain, cfg.Environment)
			for _, uid := range uids {
				u := users[uid]
				fmt.Fprintf(out, "  %s\t%s\t%v\n", uid, u.Credentials.Username, u.Roles)
			}
			return nil
		},
	}
}
