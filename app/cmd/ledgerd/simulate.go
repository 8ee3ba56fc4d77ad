package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/lending-ledger/app/simulation"
)

func newSimulateCommand(root *rootOptions) *cobra.Command {
	cfg := simulation.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Register users and items and play random borrow and return traffic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := cfg.Validate(); err != nil {
				return err
			}

			rt, err := bootstrap(ctx, root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			handlers, err := buildHandlers(rt.store, rt.observability())
			if err != nil {
				return err
			}

			sim, err := simulation.New(simulation.Handlers{
				CreateUser: handlers.CreateUser,
				CreateItem: handlers.CreateItem,
				BorrowItem: handlers.BorrowItem,
				ReturnItem: handlers.ReturnItem,
			}, simulation.WithLogger(rt.logger))
			if err != nil {
				return err
			}

			_, err = sim.Run(ctx, cfg)

			return err
		},
	}

	cmd.Flags().IntVar(&cfg.Users, "users", cfg.Users, "Number of users to register")
	cmd.Flags().IntVar(&cfg.Items, "items", cfg.Items, "Number of items to register")
	cmd.Flags().IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "Number of borrow or return attempts")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers")
	cmd.Flags().Float64Var(&cfg.MistakeRatio, "mistake-ratio", cfg.MistakeRatio, "Share of deliberately invalid attempts")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")

	return cmd
}
