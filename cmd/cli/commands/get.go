package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/trustkeeper/internal/server/store"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <table> <uid>",
		Short:     "Print one stored record",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{store.TableService, store.TableUser, store.TableDevice},
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := gw().Item(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(item, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
