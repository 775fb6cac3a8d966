package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/kargopanel/backend/internal/app"
	"github.com/kargopanel/backend/internal/config"
	"github.com/kargopanel/backend/internal/logger"
)

func main() {
	// .env опционален, в проде настройки приходят из окружения
	_ = godotenv.Load()

	conf := config.MustLoadConfig()
	l := logger.New(os.Stdout)

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		panic(err)
	}
}
