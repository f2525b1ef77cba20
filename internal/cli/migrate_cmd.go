package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-router/internal/persistence"
)

func newMigrateCmd(app *App, direction persistence.Direction) *cobra.Command {
	var (
		store string
		dir   string
	)

	use, short := "migrate", "Create the ticket tables in every department store"
	if direction == persistence.DirectionDown {
		use, short = "rollback", "Drop the ticket tables from every department store"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd, app, direction, store, dir)
		},
	}
	cmd.Flags().StringVar(&store, "db", "", "only process this store identifier")
	cmd.Flags().StringVar(&dir, "dir", persistence.DefaultMigrationsDir, "directory holding the migration files")
	return cmd
}

// runMigrations processes the selected stores in registry order. A store that fails
// is reported and skipped so the rest still run.
func runMigrations(cmd *cobra.Command, app *App, direction persistence.Direction, store, dir string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	resolver, release, err := app.OpenStores(ctx)
	if err != nil {
		return err
	}
	defer release()

	handles, err := resolver.ResolveAll()
	if err != nil {
		return err
	}
	if store != "" {
		handles = filterStore(handles, store)
		if len(handles) == 0 {
			return fmt.Errorf("store %q is not mapped to any department", store)
		}
	}
	if len(handles) == 0 {
		fmt.Fprintln(out, "No departments configured.")
		return nil
	}

	failed := 0
	for _, h := range handles {
		dept := h.Department()
		if err := app.Migrate(ctx, h, dir, direction, app.Logger); err != nil {
			failed++
			fmt.Fprintf(out, "SKIP  %s (%s): %v\n", dept.Name, dept.Store, err)
			continue
		}
		fmt.Fprintf(out, "OK    %s (%s)\n", dept.Name, dept.Store)
	}

	if store != "" && failed > 0 {
		return fmt.Errorf("%s failed for store %q", cmd.Name(), store)
	}
	fmt.Fprintf(out, "%d of %d stores processed.\n", len(handles)-failed, len(handles))
	return nil
}

func filterStore(handles []persistence.StoreHandle, store string) []persistence.StoreHandle {
	for _, h := range handles {
		if h.Department().Store == store {
			return []persistence.StoreHandle{h}
		}
	}
	return nil
}
