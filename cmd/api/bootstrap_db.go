package main

import (
	"context"

	config "github.com/streamgrid/streamgrid/internal/config/api"
	pg "github.com/streamgrid/streamgrid/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}
