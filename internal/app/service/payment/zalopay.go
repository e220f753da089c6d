package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/internal/models"
	"github.com/travelviet/tourpay/pkg/config"
	"github.com/travelviet/tourpay/pkg/signing"
	"github.com/travelviet/tourpay/pkg/types"
)

// ZaloPayClient talks to the QR-style gateway: form-encoded order creation,
// an asynchronous server-push callback and a status-polling endpoint. Its
// signing scheme joins fields with '|' and shares nothing with the
// wallet-style gateway.
type ZaloPayClient struct {
	cfg  config.ZaloPayConfig
	http *resty.Client
	log  *zap.SugaredLogger

	// poll bounds the status loop; the gateway keeps reporting
	// "processing" while settling and must not block a handler forever.
	poll RetryPolicy
}

// RetryPolicy bounds a repeated gateway query: at most MaxAttempts calls
// with Delay between them.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func NewZaloPayClient(cfg *config.Config, log *zap.SugaredLogger) *ZaloPayClient {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ZaloPayClient{
		cfg:  cfg.ZaloPay,
		http: resty.New().SetTimeout(timeout),
		log:  log,
		poll: RetryPolicy{MaxAttempts: 5, Delay: 2 * time.Second},
	}
}

func (c *ZaloPayClient) Name() types.PaymentGateway { return types.PaymentGatewayZaloPay }

// ZaloPayItem carries the domain identifiers through the gateway's item
// payload and back in the callback.
type ZaloPayItem struct {
	TourID    uint  `json:"tour_id"`
	PayerID   uint  `json:"payer_id"`
	InvoiceID uint  `json:"invoice_id"`
	Amount    int64 `json:"amount"`
}

type zaloPayCreateResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
}

// newAppTransID builds the gateway's composite transaction id, date-prefixed
// for its dedup window: yyMMdd_<random>.
func newAppTransID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("060102"), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// CreatePayment submits a signed order and returns the gateway's order URL.
func (c *ZaloPayClient) CreatePayment(ctx context.Context, inv *models.Invoice, tour *models.Tour, payer *models.Payer) (string, error) {
	now := time.Now()
	appTransID := newAppTransID(now)
	appTime := strconv.FormatInt(now.UnixMilli(), 10)
	amount := inv.TotalAmount.StringFixed(0)

	embedData, _ := json.Marshal(map[string]string{"redirecturl": c.cfg.RedirectURL})
	item, _ := json.Marshal([]ZaloPayItem{{
		TourID:    tour.ID,
		PayerID:   payer.ID,
		InvoiceID: inv.ID,
		Amount:    inv.TotalAmount.IntPart(),
	}})

	appID := strconv.Itoa(c.cfg.AppID)
	mac := signing.Sign(c.cfg.Key1, strings.Join([]string{
		appID, appTransID, c.cfg.AppUser, amount, appTime, string(embedData), string(item),
	}, "|"))

	var out zaloPayCreateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"app_id":       appID,
			"app_user":     c.cfg.AppUser,
			"app_time":     appTime,
			"amount":       amount,
			"app_trans_id": appTransID,
			"embed_data":   string(embedData),
			"item":         string(item),
			"description":  fmt.Sprintf("Tour booking payment for invoice #%d", inv.ID),
			"mac":          mac,
		}).
		SetResult(&out).
		Post(c.cfg.CreateEndpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode())
	}
	if out.ReturnCode != 1 {
		return "", fmt.Errorf("%w: code %d, %s", ErrGatewayRejected, out.ReturnCode, out.ReturnMessage)
	}

	c.log.Infow("zalopay order created", "invoice_id", inv.ID, "app_trans_id", appTransID)
	return out.OrderURL, nil
}

// VerifyCallback authenticates a server-push envelope: mac must equal
// HMAC-SHA256(key2, data). Key2 is the callback key, distinct from the
// request-signing key.
func (c *ZaloPayClient) VerifyCallback(data, mac string) bool {
	return signing.Verify(c.cfg.Key2, data, mac)
}

// ZaloPayCallbackData is the decoded callback payload. The item field is a
// JSON string nested inside the JSON data.
type ZaloPayCallbackData struct {
	AppID      int    `json:"app_id"`
	AppTransID string `json:"app_trans_id"`
	AppUser    string `json:"app_user"`
	AppTime    int64  `json:"app_time"`
	Amount     int64  `json:"amount"`
	EmbedData  string `json:"embed_data"`
	Item       string `json:"item"`
	ZPTransID  int64  `json:"zp_trans_id"`
}

// ParseCallbackData decodes the data blob and extracts the single item entry
// carrying the domain identifiers.
func (c *ZaloPayClient) ParseCallbackData(data string) (*ZaloPayCallbackData, *ZaloPayItem, error) {
	var cb ZaloPayCallbackData
	if err := json.Unmarshal([]byte(data), &cb); err != nil {
		return nil, nil, fmt.Errorf("failed to decode callback data: %w", err)
	}
	var items []ZaloPayItem
	if err := json.Unmarshal([]byte(cb.Item), &items); err != nil {
		return nil, nil, fmt.Errorf("failed to decode callback item payload: %w", err)
	}
	if len(items) != 1 {
		return nil, nil, fmt.Errorf("expected exactly one callback item, got %d", len(items))
	}
	return &cb, &items[0], nil
}

// ZaloPayStatus is the normalized result of a status poll.
type ZaloPayStatus struct {
	Outcome       types.PaymentOutcome `json:"status"`
	ReturnCode    int                  `json:"return_code"`
	ReturnMessage string               `json:"return_message"`
	IsProcessing  bool                 `json:"is_processing"`
	Amount        decimal.Decimal      `json:"amount"`
	Attempts      int                  `json:"-"`
}

type zaloPayQueryResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	IsProcessing  bool   `json:"is_processing"`
	Amount        int64  `json:"amount"`
}

// QueryStatus polls the gateway's status endpoint until it reports a
// terminal code or the retry policy is exhausted. return_code 3 with
// is_processing means the gateway is still settling; 1 is paid, 2 is failed.
// Exhausting the policy yields a pending outcome, never an endless loop.
func (c *ZaloPayClient) QueryStatus(ctx context.Context, appTransID string) (ZaloPayStatus, error) {
	appID := strconv.Itoa(c.cfg.AppID)
	mac := signing.Sign(c.cfg.Key1, strings.Join([]string{appID, appTransID, c.cfg.Key1}, "|"))

	var out zaloPayQueryResponse
	attempts := 0
	for {
		attempts++
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"app_id":       appID,
				"app_trans_id": appTransID,
				"mac":          mac,
			}).
			SetResult(&out).
			Post(c.cfg.QueryEndpoint)
		if err != nil {
			return ZaloPayStatus{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		if resp.IsError() {
			return ZaloPayStatus{}, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode())
		}

		if !(out.ReturnCode == 3 && out.IsProcessing) || attempts >= c.poll.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ZaloPayStatus{}, ctx.Err()
		case <-time.After(c.poll.Delay):
		}
	}

	st := ZaloPayStatus{
		ReturnCode:    out.ReturnCode,
		ReturnMessage: out.ReturnMessage,
		IsProcessing:  out.IsProcessing,
		Amount:        decimal.NewFromInt(out.Amount),
		Attempts:      attempts,
	}
	switch out.ReturnCode {
	case 1:
		st.Outcome = types.PaymentOutcomeSucceeded
	case 2:
		st.Outcome = types.PaymentOutcomeFailed
	default:
		st.Outcome = types.PaymentOutcomePending
	}
	return st, nil
}
