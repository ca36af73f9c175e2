package models

import "time"

// Payment is a deposit awaiting admin approval; approval credits the ledger.
type Payment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	MembershipID *uint     `json:"membership_id"`
	Amount       float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	OrderID      string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	ProofURL     string    `gorm:"type:varchar(255)" json:"proof_url"`
	Status       string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
