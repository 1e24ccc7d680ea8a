package meter

import (
	"github.com/tabacha/librelandlord/internal/meter/repository"
	"github.com/tabacha/librelandlord/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
