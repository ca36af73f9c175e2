package models

import "gorm.io/gorm"

type Setting struct {
	ID             int     `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"type:varchar(100)" json:"name"`
	MinWithdraw    float64 `gorm:"type:decimal(15,2);default:0" json:"min_withdraw"`
	MaxWithdraw    float64 `gorm:"type:decimal(15,2);default:0" json:"max_withdraw"`
	WithdrawCharge float64 `gorm:"type:decimal(15,2);default:0" json:"withdraw_charge"`
	Maintenance    bool    `gorm:"default:false" json:"maintenance"`
	ClosedRegister bool    `gorm:"default:false" json:"closed_register"`
}

func (Setting) TableName() string {
	return "settings"
}

// GetSetting returns the single settings row, or defaults when none exists yet.
func GetSetting(db *gorm.DB) (*Setting, error) {
	var s Setting
	if err := db.First(&s).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &Setting{MinWithdraw: 0, MaxWithdraw: 0, WithdrawCharge: 0}, nil
		}
		return nil, err
	}
	return &s, nil
}
