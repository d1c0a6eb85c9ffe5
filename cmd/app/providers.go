package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/qiwen/epichart/internal/domain/timeline"
	"github.com/qiwen/epichart/internal/infra/chartstore"
	"github.com/qiwen/epichart/internal/infra/config"
	"github.com/qiwen/epichart/internal/infra/forecastapi"
)

func provideChartConfig(cfg *config.Config) timeline.Config {
	return timeline.Config{
		HistoryWindow:  cfg.Chart.HistoryWindow,
		ForecastWindow: cfg.Chart.ForecastWindow,
		Horizon:        cfg.Chart.Horizon,
		SnapshotTTL:    cfg.Chart.SnapshotTTL,
	}
}

func provideForecastClient(cfg *config.Config) *forecastapi.Client {
	return forecastapi.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.RequestTimeout)
}

func provideSnapshotStore(cfg *config.Config, logger *slog.Logger) timeline.Store {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return chartstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return chartstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey snapshot store enabled", "addr", cfg.Cache.Addr)
			return chartstore.NewValkeyStore(client, cfg.Cache.KeyPrefix)
		}
	}
	return chartstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
