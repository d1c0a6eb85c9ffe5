//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/qiwen/epichart/internal/bootstrap"
	"github.com/qiwen/epichart/internal/domain/timeline"
	"github.com/qiwen/epichart/internal/infra/config"
	"github.com/qiwen/epichart/internal/infra/forecastapi"
	httpiface "github.com/qiwen/epichart/internal/interface/http"
	"github.com/qiwen/epichart/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChartConfig,
		provideForecastClient,
		provideSnapshotStore,
		timeline.NewService,
		wire.Bind(new(timeline.ForecastClient), new(*forecastapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
