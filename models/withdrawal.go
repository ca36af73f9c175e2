package models

import "time"

type Withdrawal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Charge      float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"charge"`
	FinalAmount float64   `gorm:"type:decimal(15,2);not null" json:"final_amount"`
	OrderID     string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Status      string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
