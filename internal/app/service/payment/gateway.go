package payment

import (
	"context"
	"errors"

	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/types"
)

var (
	// ErrGatewayUnavailable covers network failures, non-2xx responses and
	// malformed bodies during payment creation. The caller reports a failed
	// creation; the invoice is never mutated.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected means the gateway answered but refused the order.
	ErrGatewayRejected = errors.New("payment gateway rejected order")
	// ErrInvalidSignature marks a confirmation whose digest does not match.
	ErrInvalidSignature = errors.New("invalid gateway signature")
	// ErrUnsupportedGateway is returned for a creation request naming a
	// gateway this deployment does not carry.
	ErrUnsupportedGateway = errors.New("unsupported payment gateway")
)

// Gateway is the capability shared by all payment providers: build and
// submit a signed payment-creation request and hand back the URL the end
// user is redirected to. Confirmation handling stays provider-specific
// because each gateway dictates its own wire shapes.
type Gateway interface {
	Name() types.PaymentGateway
	CreatePayment(ctx context.Context, inv *models.Invoice, tour *models.Tour, payer *models.Payer) (string, error)
}
