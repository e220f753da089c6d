package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/internal/app/service/payment/orderref"
	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/config"
	"github.com/travelviet/tourpay/pkg/signing"
	"github.com/travelviet/tourpay/pkg/tool"
	"github.com/travelviet/tourpay/pkg/types"
)

// MomoClient talks to the wallet-style gateway: synchronous payment
// creation, an advisory browser-redirect confirmation and an authoritative
// server-to-server IPN.
type MomoClient struct {
	cfg  config.MomoConfig
	http *resty.Client
	log  *zap.SugaredLogger
}

func NewMomoClient(cfg *config.Config, log *zap.SugaredLogger) *MomoClient {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MomoClient{
		cfg:  cfg.Momo,
		http: resty.New().SetTimeout(timeout),
		log:  log,
	}
}

func (c *MomoClient) Name() types.PaymentGateway { return types.PaymentGatewayMomo }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// CreatePayment builds, signs and submits a payment-creation request and
// returns the provider's pay URL. Request and order ids are fresh UUIDs; the
// order reference travels in orderInfo and comes back verbatim at
// confirmation time.
func (c *MomoClient) CreatePayment(ctx context.Context, inv *models.Invoice, tour *models.Tour, payer *models.Payer) (string, error) {
	req := momoCreateRequest{
		PartnerCode: c.cfg.PartnerCode,
		AccessKey:   c.cfg.AccessKey,
		RequestID:   tool.GenerateUUIDV7(),
		Amount:      inv.TotalAmount.StringFixed(0),
		OrderID:     tool.GenerateUUIDV7(),
		OrderInfo: orderref.Encode(orderref.Ref{
			TourID:    tour.ID,
			PayerID:   payer.ID,
			InvoiceID: inv.ID,
			IssuedAt:  time.Now().Unix(),
		}),
		RedirectURL: fmt.Sprintf("%s?tour_id=%d&invoice_id=%d", c.cfg.RedirectURL, tour.ID, inv.ID),
		IPNURL:      c.cfg.IPNURL,
		ExtraData:   "",
		RequestType: c.cfg.RequestType,
		Lang:        "vi",
	}

	// Creation signature field order is fixed by the gateway; reordering
	// produces a valid-looking but wrong digest.
	req.Signature = signing.Sign(c.cfg.SecretKey, signing.Canonical(
		signing.KV{Key: "accessKey", Value: req.AccessKey},
		signing.KV{Key: "amount", Value: req.Amount},
		signing.KV{Key: "extraData", Value: req.ExtraData},
		signing.KV{Key: "ipnUrl", Value: req.IPNURL},
		signing.KV{Key: "orderId", Value: req.OrderID},
		signing.KV{Key: "orderInfo", Value: req.OrderInfo},
		signing.KV{Key: "partnerCode", Value: req.PartnerCode},
		signing.KV{Key: "redirectUrl", Value: req.RedirectURL},
		signing.KV{Key: "requestId", Value: req.RequestID},
		signing.KV{Key: "requestType", Value: req.RequestType},
	))

	var out momoCreateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode())
	}
	if out.PayURL == "" {
		return "", fmt.Errorf("%w: no pay url in response (code %d, %s)",
			ErrGatewayUnavailable, out.ResultCode, out.Message)
	}

	c.log.Infow("momo payment created", "invoice_id", inv.ID, "order_id", req.OrderID)
	return out.PayURL, nil
}

// MomoConfirmation is the field set the gateway delivers on both
// confirmation paths: query parameters on the browser redirect, JSON body on
// the IPN. Numeric fields stay json.Number so the canonical string re-signs
// the verbatim serialized values.
type MomoConfirmation struct {
	PartnerCode  string      `json:"partnerCode" form:"partnerCode"`
	OrderID      string      `json:"orderId" form:"orderId"`
	RequestID    string      `json:"requestId" form:"requestId"`
	Amount       json.Number `json:"amount" form:"amount"`
	OrderInfo    string      `json:"orderInfo" form:"orderInfo"`
	OrderType    string      `json:"orderType" form:"orderType"`
	TransID      json.Number `json:"transId" form:"transId"`
	ResultCode   json.Number `json:"resultCode" form:"resultCode"`
	Message      string      `json:"message" form:"message"`
	PayType      string      `json:"payType" form:"payType"`
	ResponseTime json.Number `json:"responseTime" form:"responseTime"`
	ExtraData    string      `json:"extraData" form:"extraData"`
	Signature    string      `json:"signature" form:"signature"`
}

func (p *MomoConfirmation) Succeeded() bool { return p.ResultCode.String() == "0" }

// verifySignature recomputes the digest over the gateway's confirmation
// field order, which differs from the creation order.
func (c *MomoClient) verifySignature(p *MomoConfirmation) bool {
	raw := signing.Canonical(
		signing.KV{Key: "accessKey", Value: c.cfg.AccessKey},
		signing.KV{Key: "amount", Value: p.Amount.String()},
		signing.KV{Key: "extraData", Value: p.ExtraData},
		signing.KV{Key: "message", Value: p.Message},
		signing.KV{Key: "orderId", Value: p.OrderID},
		signing.KV{Key: "orderInfo", Value: p.OrderInfo},
		signing.KV{Key: "orderType", Value: p.OrderType},
		signing.KV{Key: "partnerCode", Value: p.PartnerCode},
		signing.KV{Key: "payType", Value: p.PayType},
		signing.KV{Key: "requestId", Value: p.RequestID},
		signing.KV{Key: "responseTime", Value: p.ResponseTime.String()},
		signing.KV{Key: "resultCode", Value: p.ResultCode.String()},
		signing.KV{Key: "transId", Value: p.TransID.String()},
	)
	return signing.Verify(c.cfg.SecretKey, raw, p.Signature)
}

// MomoRedirectResult is the user-facing outcome of the browser redirect.
// RCode: 0 success, 1 failure, -1 invalid signature.
type MomoRedirectResult struct {
	Message string `json:"message"`
	RCode   int    `json:"rCode"`
}

// VerifyRedirect classifies a browser-redirect confirmation. This path runs
// in the context of a redirected browser that is not authenticated as the
// gateway, so it never mutates invoice state.
func (c *MomoClient) VerifyRedirect(p *MomoConfirmation) MomoRedirectResult {
	if !c.verifySignature(p) {
		return MomoRedirectResult{Message: "invalid signature", RCode: -1}
	}
	if !p.Succeeded() {
		return MomoRedirectResult{
			Message: fmt.Sprintf("payment failed: %s", p.Message),
			RCode:   1,
		}
	}
	return MomoRedirectResult{Message: "payment successful", RCode: 0}
}

// MomoAck is the signed acknowledgement returned for every received IPN.
// Omitting it makes the gateway retry the callback, so it is sent exactly
// once per delivery, including for the invalid-signature case.
type MomoAck struct {
	PartnerCode  string `json:"partnerCode"`
	RequestID    string `json:"requestId"`
	OrderID      string `json:"orderId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// BuildAck signs the acknowledgement over the gateway's ack field order.
func (c *MomoClient) BuildAck(p *MomoConfirmation, resultCode int, message string) MomoAck {
	ack := MomoAck{
		PartnerCode:  c.cfg.PartnerCode,
		RequestID:    p.RequestID,
		OrderID:      p.OrderID,
		ResultCode:   resultCode,
		Message:      message,
		ResponseTime: time.Now().UnixMilli(),
		ExtraData:    p.ExtraData,
	}
	ack.Signature = signing.Sign(c.cfg.SecretKey, signing.Canonical(
		signing.KV{Key: "accessKey", Value: c.cfg.AccessKey},
		signing.KV{Key: "extraData", Value: ack.ExtraData},
		signing.KV{Key: "message", Value: ack.Message},
		signing.KV{Key: "orderId", Value: ack.OrderID},
		signing.KV{Key: "partnerCode", Value: ack.PartnerCode},
		signing.KV{Key: "requestId", Value: ack.RequestID},
		signing.KV{Key: "responseTime", Value: fmt.Sprintf("%d", ack.ResponseTime)},
		signing.KV{Key: "resultCode", Value: fmt.Sprintf("%d", ack.ResultCode)},
	))
	return ack
}
