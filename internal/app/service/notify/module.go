package notify

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewMailer),
	fx.Provide(func(m *Mailer) Notifier { return m }),
)
