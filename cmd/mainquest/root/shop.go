package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Trgovina nagrada",
	}
	cmd.AddCommand(newShopListCmd(), newShopOwnedCmd(), newShopBuyCmd())
	return cmd
}

func newShopListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Nagrade dostupne za kupnju",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				list, err := a.Shop.ListAvailable(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ui.Heading(ui.IconShop, "Trgovina"))
				fmt.Fprintln(w, ui.LabelValue("Vaš XP", u.XP))
				for _, r := range list {
					price := ui.Bad.Render(fmt.Sprintf("%d XP", r.XPCost))
					if u.XP >= r.XPCost {
						price = ui.Good.Render(fmt.Sprintf("%d XP", r.XPCost))
					}
					fmt.Fprintf(w, "- #%d %s %s %s\n", r.ID, r.Name, price, ui.Muted.Render(r.Description))
				}
				return nil
			})
		},
	}
}

func newShopOwnedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owned",
		Short: "Otključane nagrade",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				list, err := a.Shop.ListUnlocked(ctx, u.ID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(w, ui.Muted.Render("Još nema otključanih nagrada"))
				}
				for _, o := range list {
					fmt.Fprintf(w, "- %s %s\n", o.Reward.Name, ui.Muted.Render(o.UnlockedAt.Format(common.DisplayDateLayout)))
				}
				return nil
			})
		},
	}
}

func newShopBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <id>",
		Short: "Kupi nagradu za XP",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return withUser(cmd, func(ctx context.Context, a *app.App, u store.User) error {
				rc, err := a.Shop.Purchase(ctx, u.ID, id)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s %s\n", ui.Good.Render(ui.IconTrophy+" Otključano:"), rc.Reward.Name)
				printChange(w, rc.Change)
				return nil
			})
		},
	}
}
