package dashboard

import (
	"github.com/smallbiznis/salesdash/internal/dashboard/repository"
	"github.com/smallbiznis/salesdash/internal/dashboard/rollup"
	"github.com/smallbiznis/salesdash/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(rollup.NewService),
	fx.Provide(
		fx.Annotate(
			service.NewInvalidationHook,
			fx.ResultTags(`group:"transaction.created"`),
		),
	),
)
