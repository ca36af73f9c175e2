package database

import (
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

// RunMigrations auto-migrates every table and seeds the baseline rows a fresh
// install needs.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Membership{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskDistributionGate{},
		&models.DailyTaskSet{},
		&models.TaskSubmission{},
		&models.TaskSubmissionArchive{},
		&models.Transaction{},
		&models.TransferContact{},
		&models.Payment{},
		&models.Withdrawal{},
		&models.Setting{},
	); err != nil {
		return err
	}
	return seedDefaults(db)
}

func seedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Membership{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		tiers := []models.Membership{
			{Name: "Basic", Price: 0, TasksPerDay: 3, IsActive: true},
			{Name: "Silver", Price: 50, TasksPerDay: 5, IsActive: true},
			{Name: "Gold", Price: 150, TasksPerDay: 10, IsActive: true},
		}
		if err := db.Create(&tiers).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(&models.Setting{
			Name:           "Viral Boast",
			MinWithdraw:    10,
			MaxWithdraw:    10000,
			WithdrawCharge: 0.5,
		}).Error
	}
	return nil
}
