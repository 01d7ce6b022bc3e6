package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/tasks"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Zadaci",
	}
	cmd.AddCommand(newTaskAddCmd(), newTaskListCmd(), newTaskToggleCmd(), newTaskEditCmd(), newTaskDeleteCmd())
	return cmd
}

// taskFlags: общие флаги add/edit.
type taskFlags struct {
	description string
	category    string
	due         string
	daily       bool
	target      int
}

func (f *taskFlags) bind(cmd *cobra.Command, withType bool) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Opis")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Kategorija (Učenje, Posao, Fitness...)")
	cmd.Flags().StringVar(&f.due, "due", "", "Rok (2006-01-02)")
	cmd.Flags().IntVarP(&f.target, "target", "t", 1, "Dnevni cilj: broj ponavljanja")
	if withType {
		cmd.Flags().BoolVar(&f.daily, "daily", false, "Dnevni cilj umjesto obične navike")
	}
}

func newTaskAddCmd() *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Dodaj zadatak ili dnevni cilj",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("potreban je naslov")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				t, err := a.Tasks.CreateTask(ctx, u.ID, tasks.TaskInput{
					Title:       args[0],
					Description: f.description,
					Category:    f.category,
					DueDate:     f.due,
					IsDailyGoal: f.daily,
					DailyTarget: f.target,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s\n", ui.Good.Render(ui.IconPlus), t.ID, t.Title, ui.Muted.Render(fmt.Sprintf("(%d XP)", t.XPReward)))
				return nil
			})
		},
	}

	f.bind(cmd, true)
	return cmd
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Popis zadataka",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				list, err := a.Tasks.ListTasks(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ui.Heading(ui.IconQuest, fmt.Sprintf("Zadaci (%d %s)", len(list), common.PluralizeTasks(len(list)))))
				if len(list) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("Nema zadataka"))
				}
				for _, t := range list {
					printTask(w, t)
				}
				return nil
			})
		},
	}
}

func newTaskToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Označi zadatak završenim ili ga ponovno otvori",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				res, err := a.Tasks.ToggleCompletion(ctx, u.ID, id)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if res.Task.IsCompleted {
					fmt.Fprintf(w, "%s %s\n", ui.Good.Render(ui.IconDone+" Završeno:"), res.Task.Title)
				} else {
					fmt.Fprintf(w, "%s %s\n", ui.Warn.Render(ui.IconUndo+" Ponovno otvoreno:"), res.Task.Title)
				}
				printChange(w, res.Change)
				return nil
			})
		},
	}
}

func newTaskEditCmd() *cobra.Command {
	var (
		f     taskFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Uredi zadatak ili dnevni cilj (XP nagrada se ne mijenja)",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				cur, err := a.Store.GetTask(ctx, id)
				if err != nil {
					return err
				}

				// Незаданные флаги сохраняют текущие значения
				in := tasks.TaskInput{
					Title:       cur.Title,
					Description: cur.Description,
					Category:    cur.Category,
					DueDate:     cur.DueDate,
					IsDailyGoal: cur.IsDailyGoal,
					DailyTarget: cur.DailyTarget,
				}
				flags := cmd.Flags()
				if flags.Changed("title") {
					in.Title = title
				}
				if flags.Changed("desc") {
					in.Description = f.description
				}
				if flags.Changed("category") {
					in.Category = f.category
				}
				if flags.Changed("due") {
					in.DueDate = f.due
				}
				if flags.Changed("target") {
					in.DailyTarget = f.target
				}

				t, err := a.Tasks.UpdateTask(ctx, u.ID, id, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ", ui.Good.Render("Spremljeno:"))
				printTask(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Novi naslov")
	f.bind(cmd, false)
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Obriši zadatak (XP ostaje)",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				if err := a.Tasks.DeleteTask(ctx, u.ID, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", ui.Warn.Render(ui.IconTrash+" Obrisano"), id)
				return nil
			})
		},
	}
}

func printTask(w io.Writer, t store.Task) {
	category := t.Category
	if category == "" {
		category = "Ostalo"
	}
	line := fmt.Sprintf("%s #%d %s %s", ui.Check(t.IsCompleted || t.GoalMet()), t.ID, t.Title,
		ui.Muted.Render(fmt.Sprintf("[%s] %d XP", category, t.XPReward)))
	if t.IsDailyGoal {
		line += fmt.Sprintf(" %d/%d", t.DailyProgress, t.DailyTarget)
		if t.StreakCount > 0 {
			line += " " + ui.Warn.Render(streakText(t.StreakCount))
		}
	} else if t.DueDate != "" {
		line += " " + ui.Muted.Render("rok "+t.DueDate)
	}
	fmt.Fprintln(w, line)
}

// streakText форматирует серию: "🔥 5 dana".
func streakText(n int) string {
	return fmt.Sprintf("%s %d %s", ui.IconFire, n, common.PluralizeDays(n))
}
