package models

import "time"

// Membership is a purchasable tier. TasksPerDay is the daily task allotment the
// distributor honors for users on the tier.
type Membership struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64   `gorm:"type:decimal(15,2);not null;default:0" json:"price"`
	TasksPerDay int       `gorm:"not null" json:"tasks_per_day"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}
