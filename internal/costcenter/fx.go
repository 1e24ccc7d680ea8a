package costcenter

import (
	"github.com/tabacha/librelandlord/internal/costcenter/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("costcenter",
	fx.Provide(repository.NewRepository),
)
