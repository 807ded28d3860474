package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"refseeder/internal/bootstrap"
	"refseeder/internal/bootstrap/logging"
	"refseeder/internal/errs"
	uselibrary "refseeder/internal/usecase/library"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or migrate the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App, _ *uselibrary.Service) error {
			if err := app.InitSchema(ctx); err != nil {
				return errs.Wrap(err, "init schema")
			}
			logging.Info(ctx, "database schema ready", slog.String("driver", app.Config.Database.Driver))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
