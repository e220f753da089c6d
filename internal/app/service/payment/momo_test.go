package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/internal/app/service/payment/orderref"
	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/config"
	"github.com/travelviet/tourpay/pkg/signing"
)

func momoTestConfig(endpoint string) *config.Config {
	return &config.Config{
		Momo: config.MomoConfig{
			Endpoint:    endpoint,
			PartnerCode: "MOMOTEST",
			AccessKey:   "access-key",
			SecretKey:   "secret-key",
			RedirectURL: "https://booking.example.com/payment/result",
			IPNURL:      "https://booking.example.com/api/v1/payment/momo/ipn",
			RequestType: "captureWallet",
		},
		GatewayTimeout: 2 * time.Second,
	}
}

func bookingFixture() (*models.Invoice, *models.Tour, *models.Payer) {
	inv := &models.Invoice{ID: 12, TotalAmount: decimal.NewFromInt(500000), TourID: 3, PayerID: 7}
	tour := &models.Tour{ID: 3, TourName: "Ha Long Bay 3N2D"}
	payer := &models.Payer{ID: 7, Name: "Lan", Email: "lan@example.com"}
	return inv, tour, payer
}

func TestMomoCreatePaymentSignsRequest(t *testing.T) {
	var got momoCreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"resultCode": 0, "payUrl": "https://pay.example.com/x"})
	}))
	defer srv.Close()

	cfg := momoTestConfig(srv.URL)
	c := NewMomoClient(cfg, zap.NewNop().Sugar())
	inv, tour, payer := bookingFixture()

	payURL, err := c.CreatePayment(context.Background(), inv, tour, payer)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/x", payURL)

	require.Equal(t, "500000", got.Amount)
	require.NotEmpty(t, got.RequestID)
	require.NotEmpty(t, got.OrderID)
	require.NotEqual(t, got.RequestID, got.OrderID)

	ref, err := orderref.Decode(got.OrderInfo)
	require.NoError(t, err)
	require.Equal(t, uint(3), ref.TourID)
	require.Equal(t, uint(7), ref.PayerID)
	require.Equal(t, uint(12), ref.InvoiceID)

	want := signing.Sign(cfg.Momo.SecretKey, signing.Canonical(
		signing.KV{Key: "accessKey", Value: got.AccessKey},
		signing.KV{Key: "amount", Value: got.Amount},
		signing.KV{Key: "extraData", Value: got.ExtraData},
		signing.KV{Key: "ipnUrl", Value: got.IPNURL},
		signing.KV{Key: "orderId", Value: got.OrderID},
		signing.KV{Key: "orderInfo", Value: got.OrderInfo},
		signing.KV{Key: "partnerCode", Value: got.PartnerCode},
		signing.KV{Key: "redirectUrl", Value: got.RedirectURL},
		signing.KV{Key: "requestId", Value: got.RequestID},
		signing.KV{Key: "requestType", Value: got.RequestType},
	))
	require.Equal(t, want, got.Signature)
}

func TestMomoCreatePaymentGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewMomoClient(momoTestConfig(srv.URL), zap.NewNop().Sugar())
	inv, tour, payer := bookingFixture()
	_, err := c.CreatePayment(context.Background(), inv, tour, payer)
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestMomoCreatePaymentMissingPayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"resultCode": 41, "message": "order exists"})
	}))
	defer srv.Close()

	c := NewMomoClient(momoTestConfig(srv.URL), zap.NewNop().Sugar())
	inv, tour, payer := bookingFixture()
	_, err := c.CreatePayment(context.Background(), inv, tour, payer)
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

// signedMomoConfirmation builds a confirmation whose signature matches the
// gateway's confirmation field order.
func signedMomoConfirmation(cfg *config.Config, orderInfo, resultCode string) *MomoConfirmation {
	p := &MomoConfirmation{
		PartnerCode:  cfg.Momo.PartnerCode,
		OrderID:      "order-1",
		RequestID:    "req-1",
		Amount:       json.Number("500000"),
		OrderInfo:    orderInfo,
		OrderType:    "momo_wallet",
		TransID:      json.Number("99001122"),
		ResultCode:   json.Number(resultCode),
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: json.Number("1693372800000"),
		ExtraData:    "",
	}
	p.Signature = signing.Sign(cfg.Momo.SecretKey, signing.Canonical(
		signing.KV{Key: "accessKey", Value: cfg.Momo.AccessKey},
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
	))
	return p
}

func TestMomoVerifyRedirect(t *testing.T) {
	cfg := momoTestConfig("")
	c := NewMomoClient(cfg, zap.NewNop().Sugar())
	orderInfo := orderref.Encode(orderref.Ref{TourID: 3, PayerID: 7, InvoiceID: 12})

	res := c.VerifyRedirect(signedMomoConfirmation(cfg, orderInfo, "0"))
	require.Equal(t, 0, res.RCode)

	res = c.VerifyRedirect(signedMomoConfirmation(cfg, orderInfo, "1"))
	require.Equal(t, 1, res.RCode)

	tampered := signedMomoConfirmation(cfg, orderInfo, "0")
	tampered.Amount = json.Number("999999")
	res = c.VerifyRedirect(tampered)
	require.Equal(t, -1, res.RCode)
}

func TestMomoBuildAckIsSigned(t *testing.T) {
	cfg := momoTestConfig("")
	c := NewMomoClient(cfg, zap.NewNop().Sugar())
	p := signedMomoConfirmation(cfg, "v1;tour=3;payer=7;inv=12;ts=0", "0")

	ack := c.BuildAck(p, 0, "confirmation processed")
	require.Equal(t, p.OrderID, ack.OrderID)
	require.Equal(t, p.RequestID, ack.RequestID)

	want := signing.Sign(cfg.Momo.SecretKey, signing.Canonical(
		signing.KV{Key: "accessKey", Value: cfg.Momo.AccessKey},
		signing.KV{Key: "extraData", Value: ack.ExtraData},
		signing.KV{Key: "message", Value: ack.Message},
		signing.KV{Key: "orderId", Value: ack.OrderID},
		signing.KV{Key: "partnerCode", Value: ack.PartnerCode},
		signing.KV{Key: "requestId", Value: ack.RequestID},
		signing.KV{Key: "responseTime", Value: fmt.Sprintf("%d", ack.ResponseTime)},
		signing.KV{Key: "resultCode", Value: "0"},
	))
	require.Equal(t, want, ack.Signature)
}
