package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/pkg/config"
	"github.com/travelviet/tourpay/pkg/signing"
	"github.com/travelviet/tourpay/pkg/types"
)

func zaloPayTestConfig(createURL, queryURL string) *config.Config {
	return &config.Config{
		ZaloPay: config.ZaloPayConfig{
			AppID:          553,
			AppUser:        "tourpay",
			Key1:           "request-signing-key",
			Key2:           "callback-verify-key",
			CreateEndpoint: createURL,
			QueryEndpoint:  queryURL,
			RedirectURL:    "https://booking.example.com/payment/result",
		},
		GatewayTimeout: 2 * time.Second,
	}
}

func TestZaloPayCreateOrderSignsRequest(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"return_code": 1, "order_url": "https://qr.example.com/o"})
	}))
	defer srv.Close()

	cfg := zaloPayTestConfig(srv.URL, "")
	c := NewZaloPayClient(cfg, zap.NewNop().Sugar())
	inv, tour, payer := bookingFixture()

	orderURL, err := c.CreatePayment(context.Background(), inv, tour, payer)
	require.NoError(t, err)
	require.Equal(t, "https://qr.example.com/o", orderURL)

	require.Equal(t, "553", form["app_id"])
	require.Equal(t, "500000", form["amount"])
	require.Regexp(t, `^\d{6}_[0-9a-f]{12}$`, form["app_trans_id"])

	var items []ZaloPayItem
	require.NoError(t, json.Unmarshal([]byte(form["item"]), &items))
	require.Len(t, items, 1)
	require.Equal(t, ZaloPayItem{TourID: 3, PayerID: 7, InvoiceID: 12, Amount: 500000}, items[0])

	// Distinct signing scheme: pipe-joined values under key1.
	want := signing.Sign(cfg.ZaloPay.Key1, strings.Join([]string{
		form["app_id"], form["app_trans_id"], form["app_user"],
		form["amount"], form["app_time"], form["embed_data"], form["item"],
	}, "|"))
	require.Equal(t, want, form["mac"])
}

func TestZaloPayCreateOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"return_code": 2, "return_message": "invalid merchant"})
	}))
	defer srv.Close()

	c := NewZaloPayClient(zaloPayTestConfig(srv.URL, ""), zap.NewNop().Sugar())
	inv, tour, payer := bookingFixture()
	_, err := c.CreatePayment(context.Background(), inv, tour, payer)
	require.ErrorIs(t, err, ErrGatewayRejected)
}

func TestZaloPayVerifyCallback(t *testing.T) {
	cfg := zaloPayTestConfig("", "")
	c := NewZaloPayClient(cfg, zap.NewNop().Sugar())

	data := `{"app_trans_id":"210901_abc","amount":500000}`
	mac := signing.Sign(cfg.ZaloPay.Key2, data)
	require.True(t, c.VerifyCallback(data, mac))
	require.False(t, c.VerifyCallback(data, signing.Sign(cfg.ZaloPay.Key1, data)))
	require.False(t, c.VerifyCallback(data+" ", mac))
}

func TestZaloPayParseCallbackData(t *testing.T) {
	c := NewZaloPayClient(zaloPayTestConfig("", ""), zap.NewNop().Sugar())

	item, _ := json.Marshal([]ZaloPayItem{{TourID: 3, PayerID: 7, InvoiceID: 12, Amount: 500000}})
	data, _ := json.Marshal(map[string]any{
		"app_id":       553,
		"app_trans_id": "210901_abcdef",
		"amount":       500000,
		"item":         string(item),
	})

	cb, got, err := c.ParseCallbackData(string(data))
	require.NoError(t, err)
	require.Equal(t, "210901_abcdef", cb.AppTransID)
	require.Equal(t, ZaloPayItem{TourID: 3, PayerID: 7, InvoiceID: 12, Amount: 500000}, *got)

	_, _, err = c.ParseCallbackData("{not json")
	require.Error(t, err)

	_, _, err = c.ParseCallbackData(`{"item":"[]"}`)
	require.Error(t, err)
}

func TestZaloPayQueryStatusStopsOnTerminalCode(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls < 3 {
			json.NewEncoder(w).Encode(map[string]any{"return_code": 3, "is_processing": true})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"return_code": 1, "amount": 500000})
	}))
	defer srv.Close()

	c := NewZaloPayClient(zaloPayTestConfig("", srv.URL), zap.NewNop().Sugar())
	c.poll = RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond}

	st, err := c.QueryStatus(context.Background(), "210901_abcdef")
	require.NoError(t, err)
	require.Equal(t, types.PaymentOutcomeSucceeded, st.Outcome)
	require.Equal(t, 3, st.Attempts)
	require.Equal(t, 3, calls, "poll must stop on the terminal code")
	require.Equal(t, "500000", st.Amount.String())
}

func TestZaloPayQueryStatusBoundedWhenStuckProcessing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"return_code": 3, "is_processing": true})
	}))
	defer srv.Close()

	c := NewZaloPayClient(zaloPayTestConfig("", srv.URL), zap.NewNop().Sugar())
	c.poll = RetryPolicy{MaxAttempts: 4, Delay: time.Millisecond}

	st, err := c.QueryStatus(context.Background(), "210901_abcdef")
	require.NoError(t, err)
	require.Equal(t, types.PaymentOutcomePending, st.Outcome)
	require.Equal(t, 4, calls, "retry policy must cap the attempts")
}

func TestZaloPayQueryStatusFailedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"return_code": 2, "return_message": "user cancelled"})
	}))
	defer srv.Close()

	c := NewZaloPayClient(zaloPayTestConfig("", srv.URL), zap.NewNop().Sugar())
	st, err := c.QueryStatus(context.Background(), "210901_abcdef")
	require.NoError(t, err)
	require.Equal(t, types.PaymentOutcomeFailed, st.Outcome)
	require.Equal(t, 1, st.Attempts)
}

func TestNewAppTransIDDatePrefix(t *testing.T) {
	id := newAppTransID(time.Date(2021, 9, 1, 10, 0, 0, 0, time.UTC))
	require.True(t, strings.HasPrefix(id, "210901_"))
	require.Len(t, id, len("210901_")+12)
}
