package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/savid/benchstats/pkg/config"
	"github.com/savid/benchstats/pkg/coordinator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatal("Invalid log level")
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := coordinator.New(cfg, os.Stdout)

	if _, err := svc.Run(ctx); err != nil {
		stop()
		logrus.WithError(err).Fatal("Report generation failed")
	}
}
