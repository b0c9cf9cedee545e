package alert

import (
	"github.com/civicworks/fieldwatch/internal/alert/repository"
	"github.com/civicworks/fieldwatch/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
