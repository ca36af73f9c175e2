package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Number       string    `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	ReffCode     string    `gorm:"size:20;uniqueIndex;not null" json:"reff_code"`
	ReffBy       *uint     `gorm:"column:reff_by" json:"reff_by"`
	MembershipID *uint     `gorm:"index" json:"membership_id"`
	Status       string    `gorm:"type:varchar(20);default:'Active'" json:"status"`
	Profile      *string   `gorm:"type:varchar(255);null" json:"profile,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
