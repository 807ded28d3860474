package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"refseeder/internal/bootstrap"
	"refseeder/internal/bootstrap/logging"
	"refseeder/internal/errs"
	uselibrary "refseeder/internal/usecase/library"
)

var searchCategory string

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Fill underfilled families from image search results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App, svc *uselibrary.Service) error {
			target := app.Config.Search.TargetPerFamily

			var categories []uselibrary.CategoryConfig
			if searchCategory != "" {
				cat, ok := uselibrary.CategoryByName(searchCategory, target)
				if !ok {
					return fmt.Errorf("unknown category %q", searchCategory)
				}
				categories = []uselibrary.CategoryConfig{cat}
			} else {
				categories = uselibrary.BuiltinCategories(target)
			}

			result, err := svc.RunSearchSeeder(ctx, categories)
			if err != nil {
				return errs.Wrap(err, "run search seeder")
			}

			for _, cat := range result.Categories {
				attrs := []slog.Attr{
					slog.String("category", cat.Category),
					slog.Int("familiesProcessed", cat.FamiliesProcessed),
					slog.Int("imagesAdded", cat.ImagesAdded),
					slog.Int("perImageErrors", len(cat.Errors)),
				}
				if cat.Err != nil {
					attrs = append(attrs, slog.Any("err", errs.Loggable(cat.Err)))
					logging.Warn(ctx, "category run failed", attrs...)
					continue
				}
				logging.Info(ctx, "category run finished", attrs...)
			}

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
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Run a single category instead of all built-ins")
	rootCmd.AddCommand(searchCmd)
}
