package root

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/ui"
)

func newServeCmd() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Pokreni noćno održavanje (cron) do SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if runNow {
				rep, err := a.Scheduler.RunNightly(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s korisnika: %d, resetiranih ciljeva: %d, obrisanih zapisa kola: %d\n",
					ui.Good.Render(ui.IconDone+" Održavanje"), rep.Users, rep.GoalsReset, rep.PrunedSpins)
			}

			// Запускаем планировщик задач (cron)
			if err := a.Scheduler.Start(ctx); err != nil {
				return err
			}
			defer a.Scheduler.Stop()

			log.Info("=== Движок готов к работе ===")

			// Ждём сигнала остановки
			<-ctx.Done()
			log.Info("Получен сигнал остановки, завершаемся...")
			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "Odmah pokreni održavanje jednom")
	return cmd
}
