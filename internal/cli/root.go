package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/persistence"
)

// MigrateFunc applies one direction of the schema files to a store.
type MigrateFunc func(ctx context.Context, h persistence.StoreHandle, dir string, direction persistence.Direction, logger *zap.Logger) error

// StoreOpener connects to the department stores. The returned func releases them.
type StoreOpener func(ctx context.Context) (*persistence.ConnectionResolver, func(), error)

// App holds the collaborators the deptctl commands run against. Stores are only
// opened by commands that need them.
type App struct {
	OpenStores StoreOpener
	Migrate    MigrateFunc
	Logger     *zap.Logger
	BcryptCost int
}

// NewRootCmd builds the deptctl command tree.
func NewRootCmd(app *App) *cobra.Command {
	if app.Migrate == nil {
		app.Migrate = persistence.RunMigrations
	}
	if app.Logger == nil {
		app.Logger = zap.NewNop()
	}

	root := &cobra.Command{
		Use:           "deptctl",
		Short:         "Manage department ticket stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(app, persistence.DirectionUp),
		newMigrateCmd(app, persistence.DirectionDown),
		newHashPasswordCmd(app),
	)
	return root
}
