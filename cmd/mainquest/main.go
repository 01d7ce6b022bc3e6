// Package main: точка входа mainquest.
// Настраивает логирование и запускает дерево команд.
// Ctrl+C и docker stop отменяют контекст команды.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/mainquest/cmd/mainquest/root"
)

func main() {
	// Настраиваем логирование до загрузки конфига
	setupLogging()

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.Execute(ctx)
}

// setupLogging настраивает формат логов. Уровень уточняется из APP_LOG_LEVEL.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
}
