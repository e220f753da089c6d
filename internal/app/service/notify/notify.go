package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/pkg/config"
)

// ErrDeliveryFailed wraps mail transport failures. A payment confirmation
// that fails to deliver never rolls back the invoice transition; callers log
// the failure and move on.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// PaymentConfirmation is the content of the payer-facing email sent after a
// verified gateway confirmation.
type PaymentConfirmation struct {
	PayerName  string
	PayerEmail string
	TourName   string
	Amount     decimal.Decimal
	PaidAt     time.Time
}

type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, pc PaymentConfirmation) error
}

type Mailer struct {
	cfg config.SMTPConfig
	log *zap.SugaredLogger
}

func NewMailer(cfg *config.Config, log *zap.SugaredLogger) *Mailer {
	return &Mailer{cfg: cfg.SMTP, log: log}
}

func (m *Mailer) SendPaymentConfirmation(ctx context.Context, pc PaymentConfirmation) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	mail := mailyak.New(addr, auth)
	mail.From(m.cfg.From)
	mail.To(pc.PayerEmail)
	mail.Subject(fmt.Sprintf("Payment received for tour %q", pc.TourName))
	mail.Plain().Set(fmt.Sprintf(
		"Dear %s,\n\nWe received your payment of %s VND for tour %q on %s.\n\nThank you for booking with us.",
		pc.PayerName, pc.Amount.StringFixed(0), pc.TourName, pc.PaidAt.Format("2006-01-02 15:04"),
	))

	if err := mail.Send(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	m.log.Infow("payment confirmation sent", "to", pc.PayerEmail, "tour", pc.TourName)
	return nil
}
