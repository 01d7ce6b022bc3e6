package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/wheel"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newWheelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wheel",
		Short: "Kolo sreće",
	}
	cmd.AddCommand(newWheelSpinCmd(), newWheelStatsCmd(), newWheelAchievementsCmd())
	return cmd
}

func newWheelSpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spin",
		Short: "Zavrti kolo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				res, err := a.Wheel.Spin(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				switch res.Label {
				case wheel.LabelNothing:
					fmt.Fprintf(w, "%s %s\n", ui.Muted.Render(ui.IconWheel), res.Label)
				case wheel.LabelBonusTurn:
					fmt.Fprintf(w, "%s %s\n", ui.Gold.Render(ui.IconWheel), ui.Gold.Render(res.Label+" (spin se ne troši)"))
				default:
					fmt.Fprintf(w, "%s %s\n", ui.Good.Render(ui.IconWheel), ui.Good.Render(res.Label))
				}
				if res.Change != nil {
					printChange(w, *res.Change)
				}
				fmt.Fprintln(w, ui.LabelValue("Preostalo danas", res.Remaining))
				return nil
			})
		},
	}
}

func newWheelStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Statistika kola",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				s, err := a.Wheel.Stats(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ui.Heading(ui.IconWheel, "Kolo sreće"))
				fmt.Fprintln(w, ui.LabelValue("Ukupno okretaja", s.TotalSpins))
				fmt.Fprintln(w, ui.LabelValue("Osvojeno XP", s.TotalXPWon))
				fmt.Fprintln(w, ui.LabelValue("Niz", fmt.Sprintf("%d %s", s.StreakDays, common.PluralizeDays(s.StreakDays))))
				fmt.Fprintln(w, ui.LabelValue("Najbolji okretaj", s.BestSpin))
				fmt.Fprintln(w, ui.LabelValue("Bonus okretaja", s.TotalBonusTurns))
				fmt.Fprintln(w, ui.LabelValue("Preostalo danas", s.RemainingSpins))
				return nil
			})
		},
	}
}

func newWheelAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Postignuća na kolu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				list, err := a.Wheel.CheckAchievements(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("Još nema postignuća"))
				}
				for _, s := range list {
					fmt.Fprintf(w, "%s %s\n", ui.Gold.Render(ui.IconTrophy), s)
				}
				return nil
			})
		},
	}
}
