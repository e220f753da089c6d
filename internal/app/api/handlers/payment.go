package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/travelviet/tourpay/internal/app/service/payment"
	"github.com/travelviet/tourpay/pkg/response"
	"github.com/travelviet/tourpay/pkg/types"
)

type createPaymentRequest struct {
	InvoiceID uint `json:"invoice_id" binding:"required"`
}

type createPaymentResponse struct {
	PayURL string `json:"pay_url"`
}

func apiCreatePayment(mgr payment.Manager, gw types.PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		payURL, err := mgr.CreatePayment(c.Request.Context(), gw, req.InvoiceID)
		if err != nil {
			// Creation failures never leave partial invoice state behind.
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(createPaymentResponse{PayURL: payURL}))
	}
}

// @Summary      Create MoMo Payment
// @Description  Starts a wallet-style payment for a WAITING invoice and returns the redirect URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.createPaymentRequest true "Invoice to pay"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payment/momo/create [post]
func ApiCreateMomoPayment(mgr payment.Manager) gin.HandlerFunc {
	return apiCreatePayment(mgr, types.PaymentGatewayMomo)
}

// @Summary      MoMo Redirect Confirmation
// @Description  Classifies the browser-redirect confirmation. Advisory only; invoice state is never changed here.
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  payment.MomoRedirectResult
// @Router       /api/v1/payment/momo/confirm [get]
func ApiMomoConfirm(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p payment.MomoConfirmation
		if err := c.ShouldBindQuery(&p); err != nil {
			c.JSON(http.StatusOK, payment.MomoRedirectResult{Message: err.Error(), RCode: -1})
			return
		}
		c.JSON(http.StatusOK, mgr.ConfirmMomoRedirect(&p))
	}
}

// @Summary      MoMo IPN
// @Description  Authoritative server-to-server confirmation. Always answers with a signed acknowledgement.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  payment.MomoAck
// @Router       /api/v1/payment/momo/ipn [post]
func ApiMomoIPN(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p payment.MomoConfirmation
		if err := c.ShouldBindJSON(&p); err != nil {
			// Even an unparseable delivery gets an acknowledgement so the
			// gateway stops retrying a request we can never process.
			c.JSON(http.StatusOK, mgr.HandleMomoIPN(c.Request.Context(), &payment.MomoConfirmation{}))
			return
		}
		c.JSON(http.StatusOK, mgr.HandleMomoIPN(c.Request.Context(), &p))
	}
}

// @Summary      Create ZaloPay Order
// @Description  Starts a QR-style payment for a WAITING invoice and returns the order URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.createPaymentRequest true "Invoice to pay"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payment/zalopay/create [post]
func ApiCreateZaloPayOrder(mgr payment.Manager) gin.HandlerFunc {
	return apiCreatePayment(mgr, types.PaymentGatewayZaloPay)
}

type zaloPayCallbackEnvelope struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
}

// @Summary      ZaloPay Callback
// @Description  Server-push confirmation envelope. Responds with the gateway's structured return codes.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  payment.ZaloPayCallbackResult
// @Router       /api/v1/payment/zalopay/callback [post]
func ApiZaloPayCallback(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var env zaloPayCallbackEnvelope
		if err := c.ShouldBindJSON(&env); err != nil {
			c.JSON(http.StatusOK, payment.ZaloPayCallbackResult{ReturnCode: 0, ReturnMessage: err.Error()})
			return
		}
		c.JSON(http.StatusOK, mgr.HandleZaloPayCallback(c.Request.Context(), env.Data, env.Mac))
	}
}

// @Summary      ZaloPay Status
// @Description  Polls the gateway for a transaction's settlement state with a bounded retry policy.
// @Tags         Payment
// @Produce      json
// @Param        apptransid query string true "Gateway transaction id"
// @Success      200  {object}  payment.ZaloPayStatus
// @Router       /api/v1/payment/zalopay/status [get]
func ApiZaloPayStatus(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		appTransID := c.Query("apptransid")
		if appTransID == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "apptransid is required"))
			return
		}
		st, err := mgr.QueryZaloPayStatus(c.Request.Context(), appTransID)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr payment.Manager) {
	momo := r.Group("/momo")
	momo.POST("/create", ApiCreateMomoPayment(mgr))
	momo.GET("/confirm", ApiMomoConfirm(mgr))
	momo.POST("/ipn", ApiMomoIPN(mgr))

	zalopay := r.Group("/zalopay")
	zalopay.POST("/create", ApiCreateZaloPayOrder(mgr))
	zalopay.POST("/callback", ApiZaloPayCallback(mgr))
	zalopay.GET("/status", ApiZaloPayStatus(mgr))
}
