package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/tasks"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Dnevni ciljevi",
	}
	cmd.AddCommand(newGoalListCmd(), newGoalAdvanceCmd(), newGoalSummaryCmd())
	return cmd
}

func newGoalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Popis dnevnih ciljeva",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				list, err := a.Tasks.ListDailyGoals(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ui.Heading(ui.IconTarget, "Dnevni ciljevi"))
				if len(list) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("Nema dnevnih ciljeva"))
				}
				for _, t := range list {
					printTask(w, t)
				}
				return nil
			})
		},
	}
}

func newGoalAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <id>",
		Short: "Zabilježi jedno ponavljanje dnevnog cilja",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				res, err := a.Tasks.Advance(ctx, u.ID, id)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				t := res.Task
				switch res.Outcome {
				case tasks.OutcomeAlreadyComplete:
					fmt.Fprintf(w, "%s %s\n", ui.Muted.Render("Već ispunjeno danas:"), t.Title)
				case tasks.OutcomeGoalCompleted:
					fmt.Fprintf(w, "%s %s %s\n", ui.Good.Render(ui.IconTrophy+" Cilj ispunjen:"), t.Title,
						ui.Warn.Render(streakText(t.StreakCount)))
					if res.Change != nil {
						printChange(w, *res.Change)
					}
				default:
					fmt.Fprintf(w, "%s %s %d/%d\n", ui.Key.Render("Napredak:"), t.Title, t.DailyProgress, t.DailyTarget)
				}
				return nil
			})
		},
	}
}

func newGoalSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Sažetak dnevnih ciljeva",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				s, err := a.Tasks.GoalSummary(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ui.LabelValue("Ispunjeno danas", fmt.Sprintf("%d/%d", s.Completed, s.Total)))
				fmt.Fprintln(w, ui.LabelValue("Najduži niz", fmt.Sprintf("%d %s", s.MaxStreak, common.PluralizeDays(s.MaxStreak))))
				return nil
			})
		},
	}
}
