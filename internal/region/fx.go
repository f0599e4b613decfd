package region

import (
	"github.com/smallbiznis/salesdash/internal/region/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("region.repository",
	fx.Provide(repository.Provide),
)
