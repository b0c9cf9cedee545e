package notifier

import "go.uber.org/fx"

var Module = fx.Module("notifier",
	fx.Provide(func(n *Noop) Notifier { return n }),
	fx.Provide(NewNoop),
)
