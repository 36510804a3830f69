package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/hypeshelf/internal/config"
	sqliteRepo "github.com/sakif/hypeshelf/internal/repository/sqlite"
	"github.com/sakif/hypeshelf/internal/service"
)

type rootOptions struct {
	dbPath  string
	verbose bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "shelfctl",
		Short:        "Operator tasks for the HypeShelf database",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (defaults to DB_PATH from the environment or .env, then "+config.DefaultDBPath+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newGrantAdminCmd(opts),
		newBackfillCmd(opts),
		newSeedCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

func newGrantAdminCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <userId>",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBootstrap(cmd.Context(), opts, func(ctx context.Context, b *service.Bootstrap) error {
				if err := b.GrantAdmin(ctx, args[0]); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
			})
		},
	}
}

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-staff-picks",
		Short: "Mark every recommendation by a current admin as a staff pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBootstrap(cmd.Context(), opts, func(ctx context.Context, b *service.Bootstrap) error {
				n, err := b.BackfillAdminStaffPicks(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"updated": n})
			})
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-movies",
		Short: "Insert the curated demo recommendations once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBootstrap(cmd.Context(), opts, func(ctx context.Context, b *service.Bootstrap) error {
				res, err := b.SeedMovies(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"success": true})
		},
	}
}

// openDB resolves the database the same way the server does: --db first,
// then DB_PATH from the environment or the .env file (ENV_FILE overrides its
// location), then the default path.
func openDB(opts *rootOptions) (*sqliteRepo.DB, error) {
	path := opts.dbPath
	if path == "" {
		cfg, err := config.Load(os.Getenv("ENV_FILE"))
		if err != nil {
			return nil, err
		}
		path = cfg.DBPath
	}
	db, err := sqliteRepo.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return db, nil
}

func withBootstrap(ctx context.Context, opts *rootOptions, fn func(context.Context, *service.Bootstrap) error) error {
	db, err := openDB(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return fn(ctx, service.NewBootstrap(db, db, logger))
}

func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
