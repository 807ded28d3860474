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

var (
	seedManifest string
	seedCategory string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a seed manifest, drain the ingest queue, and print a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App, svc *uselibrary.Service) error {
			loadResult, err := svc.LoadSeedFile(ctx, uselibrary.LoadInput{
				ManifestPath: seedManifest,
				Category:     seedCategory,
			})
			if err != nil {
				return errs.Wrap(err, "load seed file")
			}
			logging.Info(ctx, "seed manifest loaded",
				slog.Int("familiesSeen", loadResult.FamiliesSeen),
				slog.Int("familiesSkipped", loadResult.FamiliesSkipped),
				slog.Int("familiesCreated", loadResult.FamiliesCreated),
				slog.Int("newlyQueued", loadResult.NewlyQueued),
				slog.Int("alreadyQueued", loadResult.AlreadyQueued))

			stats, err := svc.DrainQueue(ctx, uselibrary.DrainInput{})
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

			report, err := svc.BuildReport(ctx)
			if err != nil {
				return errs.Wrap(err, "build report")
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedManifest, "manifest", "", "Path to the seed manifest JSON file")
	seedCmd.Flags().StringVar(&seedCategory, "category", "watches", "Category the manifest families belong to")
	_ = seedCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(seedCmd)
}
