package workforce

import (
	"github.com/civicworks/fieldwatch/internal/workforce/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("workforce",
	fx.Provide(repository.Provide),
)
