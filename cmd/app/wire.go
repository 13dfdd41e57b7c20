//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/skyviewer/nightlydigest-stats/internal/bootstrap"
	"github.com/skyviewer/nightlydigest-stats/internal/domain/digest"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/config"
	"github.com/skyviewer/nightlydigest-stats/internal/infra/digest/rsp"
	httpiface "github.com/skyviewer/nightlydigest-stats/internal/interface/http"
	"github.com/skyviewer/nightlydigest-stats/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideUpstreamClient,
		provideCacheWriter,
		digest.NewService,
		wire.Bind(new(digest.UpstreamClient), new(*rsp.Client)),
		httpiface.NewStatsHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
