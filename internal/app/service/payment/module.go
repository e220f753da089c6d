package payment

import (
	"go.uber.org/fx"

	"github.com/travelviet/tourpay/internal/app/service/callbacklog"
)

var Module = fx.Options(
	fx.Provide(NewMomoClient),
	fx.Provide(NewZaloPayClient),
	fx.Provide(func(s *callbacklog.Service) CallbackRecorder { return s }),
	fx.Provide(NewService),
)
