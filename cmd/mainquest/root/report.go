package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/features/report"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newReportCmd() *cobra.Command {
	var (
		period string
		format string
		save   bool
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Izvještaj o napretku (text, csv, summary)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := report.ParsePeriod(period)
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				if save {
					target := dir
					if target == "" {
						target = a.Config.ReportExportDir
					}
					path, err := a.Reports.Export(ctx, u.ID, p, f, target)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconReport+" Spremljeno:"), path)
					return nil
				}

				r, err := a.Reports.Build(ctx, u.ID, p)
				if err != nil {
					return err
				}
				return report.Write(cmd.OutOrStdout(), f, r)
			})
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "all", "Period: all, today, week, month, 7d, 30d")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Format: text, csv, summary")
	cmd.Flags().BoolVar(&save, "save", false, "Spremi u datoteku umjesto ispisa")
	cmd.Flags().StringVar(&dir, "dir", "", "Direktorij za spremanje (zadano REPORT_EXPORT_DIR)")
	return cmd
}
