package engine

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("engine",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, e *Engine) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				e.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				e.Stop()
				return nil
			},
		})
	}),
)
