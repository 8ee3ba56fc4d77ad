package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, opts.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if err = rt.store.Migrate(ctx); err != nil {
				rt.logger.Error("migration failed", "error", err.Error())
				return err
			}

			users, items, history := rt.store.TableNames()
			rt.logger.Info("migration done", "users_table", users, "items_table", items, "history_table", history)

			return nil
		},
	}
}
