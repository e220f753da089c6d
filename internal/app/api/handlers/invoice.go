package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/travelviet/tourpay/internal/app/service/invoice"
	"github.com/travelviet/tourpay/pkg/response"
)

// @Summary      Create Invoice
// @Description  Creates a billing intent in WAITING state; the precondition for every payment flow.
// @Tags         Invoice
// @Accept       json
// @Produce      json
// @Param        request body invoice.CreateInvoiceRequest true "Invoice to create"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/invoices [post]
func ApiCreateInvoice(svc *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req invoice.CreateInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		inv, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(inv))
	}
}

func RegisterInvoiceRoutes(r gin.IRouter, svc *invoice.Service) {
	r.POST("/invoices", ApiCreateInvoice(svc))
}
