// Package root: дерево команд CLI mainquest.
package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"serotonyl.ru/mainquest/internal/app"
	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/config"
	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/ui"
)

const Version = "0.1.0"

// username: активный пользователь (--user или MAINQUEST_USER).
var username string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mainquest",
		Short:         "Main Quest: zadaci, dnevni ciljevi, XP i nagrade",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&username, "user", "u", os.Getenv("MAINQUEST_USER"), "Korisničko ime")

	cmd.AddCommand(
		newServeCmd(),
		newUserCmd(),
		newTaskCmd(),
		newGoalCmd(),
		newShopCmd(),
		newWheelCmd(),
		newReportCmd(),
	)
	return cmd
}

// Execute запускает CLI и завершает процесс с кодом 1 при ошибке.
func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+errorText(err)))
		os.Exit(1)
	}
}

// errorText: причина для пользователя; для прочих ошибок текст как есть.
func errorText(err error) string {
	for _, kind := range []error{common.ErrNotFound, common.ErrInsufficientXP, common.ErrInvalidInput, common.ErrStoreFailure} {
		if errors.Is(err, kind) {
			return common.Reason(err)
		}
	}
	return err.Error()
}

// openApp загружает конфигурацию и собирает движок.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	app.SetupLogging(cfg.AppLogLevel)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = a.Close()
	}
	return a, cleanup, nil
}

// currentUser находит активного пользователя.
func currentUser(ctx context.Context, a *app.App) (store.User, error) {
	if username == "" {
		return store.User{}, errors.New("korisnik nije zadan: --user ili MAINQUEST_USER")
	}
	return a.Users.GetByUsername(ctx, username)
}

// withUser открывает движок и находит активного пользователя.
func withUser(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, u store.User) error) error {
	ctx := cmd.Context()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	u, err := currentUser(ctx, a)
	if err != nil {
		return err
	}
	return fn(ctx, a, u)
}

func idArg(args []string) (int64, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: neispravan ID %q", common.ErrInvalidInput, args[0])
	}
	return id, nil
}

func requireID(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("potreban je ID")
	}
	return nil
}
