package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/travelviet/tourpay/pkg/types"
)

// Invoice is the single owned, mutable record of the payment subsystem.
// StatusPayment only moves WAITING -> COMPLETED, and only through the
// conditional update in the invoice store, never by a plain save.
type Invoice struct {
	ID            uint                `gorm:"column:id;primary_key" json:"id"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2)" json:"total_amount"`
	Note          string              `gorm:"column:note;type:text" json:"note"`
	StatusPayment types.PaymentStatus `gorm:"column:status_payment;type:varchar(20);not null;default:'WAITING'" json:"status_payment"`
	TourID        uint                `gorm:"column:tour_id;not null;index" json:"tour_id"`
	Tour          *Tour               `gorm:"foreignKey:TourID" json:"tour,omitempty"`
	PayerID       uint                `gorm:"column:payer_id;not null;index" json:"payer_id"`
	Payer         *Payer              `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	CreatedDate   time.Time           `gorm:"column:created_date;autoCreateTime" json:"created_date"`
	UpdatedDate   time.Time           `gorm:"column:updated_date;autoUpdateTime" json:"updated_date"`
}

func (Invoice) TableName() string { return "invoice" }

func (i *Invoice) IsCompleted() bool {
	return i != nil && i.StatusPayment == types.PaymentStatusCompleted
}
