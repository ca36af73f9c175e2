package services

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

// testDay is a fixed reference moment all service tests start from.
var testDay = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

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
		&models.Payment{},
		&models.Withdrawal{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fixture bundles the services under test over one database and one fake clock.
type fixture struct {
	db          *gorm.DB
	clock       clockwork.FakeClock
	markers     *MemoryMarkerStore
	ledger      *Ledger
	archiver    *SubmissionArchiver
	distributor *TaskDistributor
	settlement  *Settlement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	clock := clockwork.NewFakeClockAt(testDay)
	markers := NewMemoryMarkerStore()
	log := zap.NewNop()

	ledger := NewLedger(db, clock, log)
	archiver := NewSubmissionArchiver(db, clock, markers, time.UTC, log)
	distributor := NewTaskDistributor(db, clock, &GormMembershipLookup{DB: db}, archiver, time.UTC, log)
	settlement := NewSettlement(db, ledger, clock, log)

	return &fixture{
		db:          db,
		clock:       clock,
		markers:     markers,
		ledger:      ledger,
		archiver:    archiver,
		distributor: distributor,
		settlement:  settlement,
	}
}

func (f *fixture) createUser(t *testing.T, number string, membershipID *uint, reffBy *uint) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "User " + number,
		Number:       number,
		Password:     "x",
		ReffCode:     "RC" + number,
		ReffBy:       reffBy,
		MembershipID: membershipID,
		Status:       "Active",
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) createMembership(t *testing.T, name string, tasksPerDay int) *models.Membership {
	t.Helper()
	m := &models.Membership{Name: name, TasksPerDay: tasksPerDay, IsActive: true}
	if err := f.db.Create(m).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
	return m
}

func (f *fixture) createTask(t *testing.T, title string, benefit float64, distThreshold, compThreshold int64) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:                 title,
		Benefit:               benefit,
		IsActive:              true,
		DistributionThreshold: distThreshold,
		CompletionThreshold:   compThreshold,
	}
	if err := f.db.Create(task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func (f *fixture) reloadAccount(t *testing.T, userID uint) *models.Account {
	t.Helper()
	var acct models.Account
	if err := f.db.Where("user_id = ?", userID).First(&acct).Error; err != nil {
		t.Fatalf("reload account for user %d: %v", userID, err)
	}
	return &acct
}

func (f *fixture) reloadTask(t *testing.T, id uint) *models.Task {
	t.Helper()
	var task models.Task
	if err := f.db.First(&task, id).Error; err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return &task
}

func uintPtr(v uint) *uint { return &v }
