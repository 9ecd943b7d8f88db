package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/glucobridge-backend/internal/app"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "glucobridge",
		Short:         "Meal glucose-response prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newRefreshProfilesCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background profile refresh",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func newRefreshProfilesCmd() *cobra.Command {
	var (
		users []string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "refresh-profiles",
		Short: "Recompute metabolic profiles once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := make([]uuid.UUID, 0, len(users))
			for _, raw := range users {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid --user %q: %w", raw, err)
				}
				ids = append(ids, id)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			a, err := app.New(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.RefreshProfiles(ctx, ids, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed=%d cached=%d failed=%d\n", res.Refreshed, res.Cached, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d profile refreshes failed", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&users, "user", nil, "user id to refresh (repeatable); defaults to every stale user")
	cmd.Flags().BoolVar(&force, "force", false, "recompute even when the stored profile is fresh")
	return cmd
}

func serve(parent context.Context) error {
	ctx, stop := signalContext(parent)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}
	return a.Run(ctx)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
