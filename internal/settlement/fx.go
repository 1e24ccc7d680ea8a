package settlement

import (
	"github.com/tabacha/librelandlord/internal/settlement/repository"
	"github.com/tabacha/librelandlord/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
