package formula

import (
	"github.com/tabacha/librelandlord/internal/formula/repository"
	"github.com/tabacha/librelandlord/internal/formula/service"
	"go.uber.org/fx"
)

var Module = fx.Module("formula",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
