package models

import "time"

// Account holds the monetary state for one user. Exactly one row per user,
// created lazily on first ledger access. Deactivation is a soft flag; rows are
// never removed while the owning user exists.
type Account struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance          float64   `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	TotalEarned      float64   `gorm:"type:decimal(15,2);not null;default:0" json:"total_earned"`
	TotalWithdrawals float64   `gorm:"type:decimal(15,2);not null;default:0" json:"total_withdrawals"`
	TasksIncome      float64   `gorm:"type:decimal(15,2);not null;default:0" json:"tasks_income"`
	ReferralIncome   float64   `gorm:"type:decimal(15,2);not null;default:0" json:"referral_income"`
	BonusIncome      float64   `gorm:"type:decimal(15,2);not null;default:0" json:"bonus_income"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}
