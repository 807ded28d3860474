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

var workerMaxItems int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Drain pending and stale ingest queue items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App, svc *uselibrary.Service) error {
			stats, err := svc.DrainQueue(ctx, uselibrary.DrainInput{MaxItems: workerMaxItems})
			if err != nil {
				return errs.Wrap(err, "drain queue")
			}
			logging.Info(ctx, "queue drained",
				slog.Int("claimed", stats.Claimed),
				slog.Int("completed", stats.Completed),
				slog.Int("failed", stats.Failed),
				slog.Int("skipped", stats.Skipped),
				slog.Int("requeued", stats.Requeued),
				slog.Int("statusChanges", stats.StatusChanges))
			return nil
		})
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerMaxItems, "max-items", 0, "Stop after processing this many items (0 = no cap)")
	rootCmd.AddCommand(workerCmd)
}
