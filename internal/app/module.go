package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/travelviet/tourpay/internal/app/api/server"
	"github.com/travelviet/tourpay/internal/app/service/callbacklog"
	"github.com/travelviet/tourpay/internal/app/service/invoice"
	"github.com/travelviet/tourpay/internal/app/service/notify"
	"github.com/travelviet/tourpay/internal/app/service/payment"
	"github.com/travelviet/tourpay/internal/platform/db"
	"github.com/travelviet/tourpay/pkg/config"
	"github.com/travelviet/tourpay/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	notify.Module,
	invoice.Module,
	callbacklog.Module,
	payment.Module,
)
