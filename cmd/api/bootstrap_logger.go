package main

import (
	"go.uber.org/zap"

	config "github.com/streamgrid/streamgrid/internal/config/api"
	"github.com/streamgrid/streamgrid/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
