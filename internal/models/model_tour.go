package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tour is read-only from the payment subsystem's perspective; it is looked
// up by id for notification content.
type Tour struct {
	ID          uint            `gorm:"column:id;primary_key" json:"id"`
	TourName    string          `gorm:"column:tour_name;type:varchar(255);not null" json:"tour_name"`
	Departure   string          `gorm:"column:departure;type:varchar(255)" json:"departure"`
	DepartDate  *time.Time      `gorm:"column:depart_date;default:null" json:"depart_date"`
	Duration    string          `gorm:"column:duration;type:varchar(50)" json:"duration"`
	PriceOfTour decimal.Decimal `gorm:"column:price_of_tour;type:numeric(14,2);not null" json:"price_of_tour"`
	PriceOfRoom decimal.Decimal `gorm:"column:price_of_room;type:numeric(14,2);not null" json:"price_of_room"`
	Active      bool            `gorm:"column:active;default:true" json:"active"`
	CreatedDate time.Time       `gorm:"column:created_date;autoCreateTime" json:"created_date"`
	UpdatedDate time.Time       `gorm:"column:updated_date;autoUpdateTime" json:"updated_date"`
}

func (Tour) TableName() string { return "tour" }
