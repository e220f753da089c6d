package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/travelviet/tourpay/pkg/types"
)

type GatewayCallbackLogStatus string

const (
	GatewayCallbackLogStatusReceived     GatewayCallbackLogStatus = "received"
	GatewayCallbackLogStatusHandled      GatewayCallbackLogStatus = "handled"
	GatewayCallbackLogStatusHandleFailed GatewayCallbackLogStatus = "handle_failed"
)

// GatewayCallbackLog records every inbound gateway confirmation, valid or
// not. It is an audit trail only; invoice state never depends on it.
type GatewayCallbackLog struct {
	ID        string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway   types.PaymentGateway     `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	TraceID   string                   `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	OrderID   string                   `gorm:"column:order_id;type:varchar(128)" json:"order_id"`
	InvoiceID *uint                    `gorm:"column:invoice_id" json:"invoice_id"`
	Payload   datatypes.JSON           `gorm:"column:payload;type:jsonb" json:"payload"`
	Result    *datatypes.JSON          `gorm:"column:result;type:jsonb" json:"result"`
	Status    GatewayCallbackLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func (GatewayCallbackLog) TableName() string { return "gateway_callback_log" }
