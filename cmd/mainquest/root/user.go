package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/features/economy"
	"serotonyl.ru/mainquest/internal/features/users"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Korisnici",
	}
	cmd.AddCommand(newUserAddCmd(), newUserShowCmd(), newUserListCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Registriraj korisnika",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("potrebno je korisničko ime")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := a.Users.Register(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Korisnik"), u.Username, ui.Muted.Render(fmt.Sprintf("(#%d)", u.ID)))
			return nil
		},
	}
}

func newUserShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Prikaži level i XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				p, err := a.Users.Profile(ctx, u.ID)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Popis korisnika",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := a.Users.List(ctx)
			if err != nil {
				return err
			}
			for _, u := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "- #%d %s %s\n", u.ID, u.Username, ui.Muted.Render(fmt.Sprintf("%d XP", u.XP)))
			}
			return nil
		},
	}
}

func printProfile(w io.Writer, p users.Profile) {
	fmt.Fprintln(w, ui.Heading(ui.IconSparkle, p.User.Username))
	fmt.Fprintln(w, ui.LabelValue("Level", p.Level.Level))
	fmt.Fprintln(w, ui.LabelValue("XP", p.Level.XP))
	if p.Level.IsMaxLevel {
		fmt.Fprintln(w, ui.Gold.Render("Maksimalni level!"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.ProgressBar(p.Level.Progress, 20), ui.Muted.Render(fmt.Sprintf("još %d XP do %d XP", p.Level.XPToNext, p.Level.NextLevel)))
}

// printChange выводит изменение XP и повышение уровня.
func printChange(w io.Writer, c economy.Change) {
	if c.Delta == 0 {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.Key.Render(common.FormatXPDelta(c.Delta)), ui.Muted.Render(fmt.Sprintf("(%d → %d)", c.OldXP, c.NewXP)))
	if c.LevelUp != nil {
		fmt.Fprintf(w, "%s %d → %d %s\n", ui.BadgeLevelUp, c.LevelUp.OldLevel, c.LevelUp.NewLevel, ui.Gold.Render(c.LevelUp.RewardTitle))
	}
}
