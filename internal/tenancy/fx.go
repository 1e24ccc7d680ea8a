package tenancy

import (
	"github.com/tabacha/librelandlord/internal/tenancy/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy",
	fx.Provide(repository.NewRepository),
)
