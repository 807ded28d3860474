package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"refseeder/internal/bootstrap"
	"refseeder/internal/domain/library"
	"refseeder/internal/errs"
	uselibrary "refseeder/internal/usecase/library"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the library readiness report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App, svc *uselibrary.Service) error {
			report, err := svc.BuildReport(ctx)
			if err != nil {
				return errs.Wrap(err, "build report")
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

// renderReport writes the readiness report as tables. Logs go to stderr,
// tables to the command's stdout, so the output stays pipeable.
func renderReport(w io.Writer, report uselibrary.Report) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("Library summary")
	summary.AppendRows([]table.Row{
		{"Families", report.TotalFamilies},
		{"Images", report.TotalImages},
		{"Min images/family", report.MinImagesPerFamily},
		{"Max images/family", report.MaxImagesPerFamily},
		{"Avg images/family", fmt.Sprintf("%.1f", report.AvgImagesPerFamily)},
		{"Ready or locked", report.ReadyOrLocked},
		{"Library ready", report.LibraryReady},
	})
	summary.Render()

	queue := table.NewWriter()
	queue.SetOutputMirror(w)
	queue.SetStyle(table.StyleLight)
	queue.SetTitle("Ingest queue")
	for _, status := range []library.QueueStatus{
		library.QueuePending,
		library.QueueProcessing,
		library.QueueCompleted,
		library.QueueFailed,
		library.QueueSkipped,
	} {
		queue.AppendRow(table.Row{string(status), report.QueueCounts[status]})
	}
	queue.Render()

	if len(report.Underfilled) == 0 {
		return
	}
	under := table.NewWriter()
	under.SetOutputMirror(w)
	under.SetStyle(table.StyleLight)
	under.SetTitle("Underfilled families")
	under.AppendHeader(table.Row{"ID", "Category", "Family", "Status", "Images", "Required"})
	for _, row := range report.Underfilled {
		under.AppendRow(table.Row{
			row.FamilyID,
			row.Category,
			row.DisplayName,
			string(row.Status),
			row.ImageCount,
			row.MinImagesRequired,
		})
	}
	under.Render()
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
