package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/internal/app/service/notify"
	"github.com/travelviet/tourpay/internal/app/service/payment/orderref"
	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/logctx"
)

// Service owns the invoice state machine: the WAITING -> COMPLETED
// transition and its idempotency guarantee. The conditional update in the
// store guards the notification side effect, so duplicate gateway
// redeliveries produce exactly one email.
type Service struct {
	store    Store
	notifier notify.Notifier
	log      *zap.SugaredLogger
}

func NewService(store Store, notifier notify.Notifier, log *zap.SugaredLogger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

type CreateInvoiceRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Note        string          `json:"note"`
	TourID      uint            `json:"tour_id"`
	PayerID     uint            `json:"payer_id"`
}

// Create persists a new invoice in WAITING state. It is the precondition for
// every payment flow; the confirmation path itself never creates invoices.
func (s *Service) Create(ctx context.Context, req *CreateInvoiceRequest) (*models.Invoice, error) {
	inv := &models.Invoice{
		TotalAmount: req.TotalAmount,
		Note:        req.Note,
		TourID:      req.TourID,
		PayerID:     req.PayerID,
	}
	if err := s.store.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CompletePayment applies a verified gateway confirmation. The caller has
// already authenticated the confirmation; this method resolves the order
// reference, performs the check-and-set transition, and sends the payer
// email only when this call actually transitioned the invoice.
func (s *Service) CompletePayment(ctx context.Context, ref orderref.Ref, amount decimal.Decimal) error {
	if ref.InvoiceID == 0 {
		return fmt.Errorf("%w: order reference carries no invoice id", orderref.ErrMalformedReference)
	}

	transitioned, err := s.store.Complete(ctx, ref.InvoiceID)
	if err != nil {
		return err
	}
	if !transitioned {
		logctx.FromCtx(ctx, s.log).Infow("invoice already completed, skipping notification",
			"invoice_id", ref.InvoiceID)
		return nil
	}

	payer, err := s.store.FindPayer(ctx, ref.PayerID)
	if err != nil {
		// The payment is settled; a payer lookup failure only costs the email.
		logctx.FromCtx(ctx, s.log).Errorw("payer lookup failed after completion",
			"invoice_id", ref.InvoiceID, "payer_id", ref.PayerID, "error", err)
		return nil
	}
	tour, err := s.store.FindTour(ctx, ref.TourID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("tour lookup failed after completion",
			"invoice_id", ref.InvoiceID, "tour_id", ref.TourID, "error", err)
		return nil
	}

	if err := s.notifier.SendPaymentConfirmation(ctx, notify.PaymentConfirmation{
		PayerName:  payer.Name,
		PayerEmail: payer.Email,
		TourName:   tour.TourName,
		Amount:     amount,
		PaidAt:     time.Now(),
	}); err != nil {
		// Payment success is the authoritative fact; delivery failure is
		// reported separately and never rolls the transition back.
		logctx.FromCtx(ctx, s.log).Errorw("confirmation email failed",
			"invoice_id", ref.InvoiceID, "error", err)
	}
	return nil
}
