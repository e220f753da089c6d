package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/travelviet/tourpay/internal/app/service/invoice"
	"github.com/travelviet/tourpay/internal/app/service/payment/orderref"
	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/logctx"
	"github.com/travelviet/tourpay/pkg/metrics"
	"github.com/travelviet/tourpay/pkg/types"
)

// Manager is the payment subsystem's entry point for HTTP handlers.
type Manager interface {
	// CreatePayment starts a payment attempt for a WAITING invoice on the
	// named gateway and returns the URL the end user pays at.
	CreatePayment(ctx context.Context, gw types.PaymentGateway, invoiceID uint) (string, error)
	// ConfirmMomoRedirect classifies a browser-redirect confirmation.
	// Advisory only: never mutates invoice state.
	ConfirmMomoRedirect(p *MomoConfirmation) MomoRedirectResult
	// HandleMomoIPN processes the authoritative server-to-server
	// confirmation and always returns a signed acknowledgement.
	HandleMomoIPN(ctx context.Context, p *MomoConfirmation) MomoAck
	// HandleZaloPayCallback processes a server-push envelope and returns
	// the gateway's expected structured response.
	HandleZaloPayCallback(ctx context.Context, data, mac string) ZaloPayCallbackResult
	// QueryZaloPayStatus polls the gateway for a transaction's state.
	QueryZaloPayStatus(ctx context.Context, appTransID string) (ZaloPayStatus, error)
}

// ZaloPayCallbackResult is the wire response for the QR gateway's callback.
// return_code 1 acknowledges success, -1 rejects a bad mac, 0 asks the
// gateway to redeliver (it retries a bounded number of times).
type ZaloPayCallbackResult struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// CallbackRecorder persists gateway callback audit rows. Each entry handed
// to Save is owned by the recorder from that point on.
type CallbackRecorder interface {
	Save(ctx context.Context, entry *models.GatewayCallbackLog)
}

type Service struct {
	gateways map[types.PaymentGateway]Gateway
	momo     *MomoClient
	zalopay  *ZaloPayClient
	invoices *invoice.Service
	store    invoice.Store
	cblog    CallbackRecorder
	log      *zap.SugaredLogger
}

func NewService(momo *MomoClient, zalopay *ZaloPayClient, invoices *invoice.Service, store invoice.Store, cblog CallbackRecorder, log *zap.SugaredLogger) Manager {
	return &Service{
		gateways: map[types.PaymentGateway]Gateway{
			momo.Name():    momo,
			zalopay.Name(): zalopay,
		},
		momo:     momo,
		zalopay:  zalopay,
		invoices: invoices,
		store:    store,
		cblog:    cblog,
		log:      log,
	}
}

func (s *Service) CreatePayment(ctx context.Context, gw types.PaymentGateway, invoiceID uint) (string, error) {
	gateway, ok := s.gateways[gw]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedGateway, gw)
	}

	inv, err := s.store.Find(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.IsCompleted() {
		return "", fmt.Errorf("invoice %d is already paid", invoiceID)
	}
	tour, err := s.store.FindTour(ctx, inv.TourID)
	if err != nil {
		return "", err
	}
	payer, err := s.store.FindPayer(ctx, inv.PayerID)
	if err != nil {
		return "", err
	}

	return gateway.CreatePayment(ctx, inv, tour, payer)
}

func (s *Service) ConfirmMomoRedirect(p *MomoConfirmation) MomoRedirectResult {
	return s.momo.VerifyRedirect(p)
}

// HandleMomoIPN verifies the inbound signature, transitions the invoice on a
// success code and builds the signed acknowledgement. Every delivery gets
// exactly one ack, including invalid ones: the ack confirms receipt, not
// correctness. No error escapes to the HTTP layer.
func (s *Service) HandleMomoIPN(ctx context.Context, p *MomoConfirmation) MomoAck {
	s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, nil, p,
		models.GatewayCallbackLogStatusReceived, "")

	if !s.momo.verifySignature(p) {
		logctx.FromCtx(ctx, s.log).Warnw("momo ipn signature mismatch", "order_id", p.OrderID)
		s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, nil, p,
			models.GatewayCallbackLogStatusHandleFailed, ErrInvalidSignature.Error())
		return s.momo.BuildAck(p, -1, "invalid signature")
	}

	if !p.Succeeded() {
		// A verified failure confirmation leaves the invoice WAITING.
		logctx.FromCtx(ctx, s.log).Infow("momo ipn reports failed payment",
			"order_id", p.OrderID, "result_code", p.ResultCode.String())
		s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, nil, p,
			models.GatewayCallbackLogStatusHandled, "payment failure recorded")
		return s.momo.BuildAck(p, 0, "payment failure recorded")
	}

	ref, err := orderref.Decode(p.OrderInfo)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("momo ipn order reference undecodable",
			"order_id", p.OrderID, "error", err)
		s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, nil, p,
			models.GatewayCallbackLogStatusHandleFailed, err.Error())
		return s.momo.BuildAck(p, 1, err.Error())
	}
	invoiceID := ref.InvoiceID

	amount, err := decimal.NewFromString(p.Amount.String())
	if err != nil {
		amount = decimal.Zero
	}
	if err := s.invoices.CompletePayment(ctx, ref, amount); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("momo ipn completion failed",
			"invoice_id", invoiceID, "error", err)
		s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, &invoiceID, p,
			models.GatewayCallbackLogStatusHandleFailed, err.Error())
		return s.momo.BuildAck(p, 1, err.Error())
	}

	s.recordCallback(ctx, types.PaymentGatewayMomo, p.OrderID, &invoiceID, p,
		models.GatewayCallbackLogStatusHandled, "confirmation processed")
	return s.momo.BuildAck(p, 0, "confirmation processed")
}

// HandleZaloPayCallback authenticates and applies a server-push
// confirmation. The handler is re-entrant: redelivery of an
// already-completed invoice acknowledges success without a second email.
func (s *Service) HandleZaloPayCallback(ctx context.Context, data, mac string) ZaloPayCallbackResult {
	s.recordCallback(ctx, types.PaymentGatewayZaloPay, "", nil, json.RawMessage(data),
		models.GatewayCallbackLogStatusReceived, "")

	if !s.zalopay.VerifyCallback(data, mac) {
		logctx.FromCtx(ctx, s.log).Warnw("zalopay callback mac mismatch")
		s.recordCallback(ctx, types.PaymentGatewayZaloPay, "", nil, json.RawMessage(data),
			models.GatewayCallbackLogStatusHandleFailed, ErrInvalidSignature.Error())
		return ZaloPayCallbackResult{ReturnCode: -1, ReturnMessage: "mac not equal"}
	}

	cb, item, err := s.zalopay.ParseCallbackData(data)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("zalopay callback data undecodable", "error", err)
		s.recordCallback(ctx, types.PaymentGatewayZaloPay, "", nil, json.RawMessage(data),
			models.GatewayCallbackLogStatusHandleFailed, err.Error())
		return ZaloPayCallbackResult{ReturnCode: 0, ReturnMessage: err.Error()}
	}
	invoiceID := item.InvoiceID

	ref := orderref.Ref{TourID: item.TourID, PayerID: item.PayerID, InvoiceID: item.InvoiceID}
	if err := s.invoices.CompletePayment(ctx, ref, decimal.NewFromInt(item.Amount)); err != nil {
		// return_code 0 signals "retry me"; the gateway redelivers a
		// bounded number of times.
		logctx.FromCtx(ctx, s.log).Errorw("zalopay callback completion failed",
			"app_trans_id", cb.AppTransID, "invoice_id", invoiceID, "error", err)
		s.recordCallback(ctx, types.PaymentGatewayZaloPay, cb.AppTransID, &invoiceID, json.RawMessage(data),
			models.GatewayCallbackLogStatusHandleFailed, err.Error())
		return ZaloPayCallbackResult{ReturnCode: 0, ReturnMessage: err.Error()}
	}

	s.recordCallback(ctx, types.PaymentGatewayZaloPay, cb.AppTransID, &invoiceID, json.RawMessage(data),
		models.GatewayCallbackLogStatusHandled, "success")
	return ZaloPayCallbackResult{ReturnCode: 1, ReturnMessage: "success"}
}

func (s *Service) QueryZaloPayStatus(ctx context.Context, appTransID string) (ZaloPayStatus, error) {
	return s.zalopay.QueryStatus(ctx, appTransID)
}

// recordCallback writes one audit row. Every row is a fresh, fully populated
// struct handed to the recorder exactly once; the recorder persists it from
// its own goroutine, so nothing may write to an entry after Save.
func (s *Service) recordCallback(ctx context.Context, gw types.PaymentGateway, orderID string, invoiceID *uint, payload any, status models.GatewayCallbackLogStatus, result string) {
	if status != models.GatewayCallbackLogStatusReceived {
		metrics.ObserveGatewayCallback(string(gw), string(status))
	}
	if s.cblog == nil {
		return
	}

	raw, _ := json.Marshal(payload)
	entry := &models.GatewayCallbackLog{
		Gateway:   gw,
		OrderID:   orderID,
		InvoiceID: invoiceID,
		Payload:   datatypes.JSON(raw),
		Status:    status,
	}
	if tid, ok := ctx.Value("traceID").(string); ok {
		entry.TraceID = tid
	}
	if result != "" {
		res, _ := json.Marshal(map[string]string{"message": result})
		resJSON := datatypes.JSON(res)
		entry.Result = &resJSON
	}
	s.cblog.Save(ctx, entry)
}
