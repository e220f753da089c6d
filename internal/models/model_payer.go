package models

// Payer is the billing contact for an invoice. The payment subsystem only
// reads it, by the id embedded in the order reference.
type Payer struct {
	ID      uint   `gorm:"column:id;primary_key" json:"id"`
	Name    string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email   string `gorm:"column:email;type:varchar(254);not null" json:"email"`
	Phone   string `gorm:"column:phone;type:varchar(255);not null" json:"phone"`
	Address string `gorm:"column:address;type:text" json:"address"`
}

func (Payer) TableName() string { return "payer" }
