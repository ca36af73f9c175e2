package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

// Reward multiplier applied to a task's benefit at assignment time. Reserved
// for promotions; currently always 1.0.
const rewardMultiplier = 1.0

// MembershipLookup resolves a user's active tier. Returns (nil, nil) when the
// user has none.
type MembershipLookup interface {
	GetActiveMembership(userID uint) (*models.Membership, error)
}

// GormMembershipLookup reads the tier off the users table.
type GormMembershipLookup struct {
	DB *gorm.DB
}

func (m *GormMembershipLookup) GetActiveMembership(userID uint) (*models.Membership, error) {
	var user models.User
	if err := m.DB.Select("membership_id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.MembershipID == nil {
		return nil, nil
	}
	var tier models.Membership
	if err := m.DB.Where("id = ? AND is_active = ?", *user.MembershipID, true).First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// DistributionResult is what a daily-tasks request hands back. IsNewAssignment
// is false when the day's batch already existed and was replayed.
type DistributionResult struct {
	Assignments     []models.TaskAssignment `json:"assignments"`
	IsNewAssignment bool                    `json:"is_new_assignment"`
}

// TaskDistributor assigns each user their daily task batch exactly once per
// calendar day. The check-then-act section is serialized per user with a keyed
// mutex; different users proceed in parallel.
type TaskDistributor struct {
	db          *gorm.DB
	clock       clockwork.Clock
	memberships MembershipLookup
	archiver    *SubmissionArchiver
	loc         *time.Location
	log         *zap.Logger

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

func NewTaskDistributor(db *gorm.DB, clock clockwork.Clock, memberships MembershipLookup, archiver *SubmissionArchiver, loc *time.Location, log *zap.Logger) *TaskDistributor {
	if loc == nil {
		loc = time.Local
	}
	return &TaskDistributor{
		db:          db,
		clock:       clock,
		memberships: memberships,
		archiver:    archiver,
		loc:         loc,
		log:         log,
		userLocks:   make(map[uint]*sync.Mutex),
	}
}

func (d *TaskDistributor) lockUser(userID uint) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		d.userLocks[userID] = l
	}
	return l
}

func (d *TaskDistributor) dayOf(t time.Time) string {
	return t.In(d.loc).Format("2006-01-02")
}

func (d *TaskDistributor) endOfDay(t time.Time) time.Time {
	t = t.In(d.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, d.loc)
}

// RequestDailyTasks is the single entry point for daily distribution. The
// first call of a user's day selects and persists a fresh batch; every later
// call that day replays the same batch from the day's snapshot without side
// effects.
func (d *TaskDistributor) RequestDailyTasks(ctx context.Context, userID uint) (*DistributionResult, error) {
	lock := d.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	now := d.clock.Now().In(d.loc)
	today := d.dayOf(now)

	var gate models.TaskDistributionGate
	gateErr := d.db.Where("user_id = ?", userID).First(&gate).Error
	if gateErr != nil && !errors.Is(gateErr, gorm.ErrRecordNotFound) {
		return nil, gateErr
	}
	if gateErr == nil && d.dayOf(gate.LastRequestedAt) == today {
		return d.replayToday(userID, today)
	}

	// First request of this user's day also triggers the shared daily sweep.
	// The sweep has its own guard and its failures never block assignment.
	if d.archiver != nil {
		if _, err := d.archiver.RunArchivalSweepIfNeeded(ctx); err != nil {
			d.log.Warn("archival sweep failed during distribution", zap.Error(err))
		}
	}

	tier, err := d.memberships.GetActiveMembership(userID)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, &NoMembershipError{UserID: userID}
	}

	// All-time exclusion set: a task the user ever held is never selected again.
	var historical []uint
	if err := d.db.Model(&models.TaskAssignment{}).
		Where("user_id = ?", userID).
		Pluck("task_id", &historical).Error; err != nil {
		return nil, err
	}

	selection := d.db.Model(&models.Task{}).
		Where("is_active = ? AND distribution_count < distribution_threshold", true)
	if len(historical) > 0 {
		selection = selection.Where("id NOT IN ?", historical)
	}
	var candidates []models.Task
	if err := selection.Order("id ASC").Limit(tier.TasksPerDay).Find(&candidates).Error; err != nil {
		return nil, err
	}

	var assignments []models.TaskAssignment
	txErr := d.db.Transaction(func(tx *gorm.DB) error {
		assignedIDs := make([]uint, 0, len(candidates))
		for _, task := range candidates {
			// Claim a distribution slot first; another user may have taken the
			// last one since the selection query ran.
			claim := tx.Model(&models.Task{}).
				Where("id = ? AND distribution_count < distribution_threshold", task.ID).
				Update("distribution_count", gorm.Expr("distribution_count + ?", 1))
			if claim.Error != nil {
				return claim.Error
			}
			if claim.RowsAffected == 0 {
				continue
			}

			assignment := models.TaskAssignment{
				UserID:      userID,
				TaskID:      task.ID,
				Status:      models.AssignmentPending,
				FinalReward: task.Benefit * rewardMultiplier,
				AssignedAt:  now,
				ExpiresAt:   d.endOfDay(now),
			}
			if err := tx.Create(&assignment).Error; err != nil {
				if isDuplicateKey(err) {
					return &DuplicateAssignmentError{UserID: userID, TaskID: task.ID}
				}
				return err
			}
			assignments = append(assignments, assignment)
			assignedIDs = append(assignedIDs, task.ID)
		}

		snapshot := models.DailyTaskSet{
			UserID:          userID,
			Day:             today,
			AssignedTaskIDs: models.EncodeTaskIDs(assignedIDs),
			TasksAssigned:   len(assignedIDs),
			MembershipID:    tier.ID,
			MembershipLimit: tier.TasksPerDay,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		if gateErr == nil {
			return tx.Model(&gate).Update("last_requested_at", now).Error
		}
		return tx.Create(&models.TaskDistributionGate{UserID: userID, LastRequestedAt: now}).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if len(assignments) == 0 {
		d.log.Info("no eligible tasks for user today",
			zap.Uint("user_id", userID), zap.String("day", today))
	}
	return &DistributionResult{Assignments: assignments, IsNewAssignment: true}, nil
}

// replayToday rebuilds the day's answer from the snapshot, restricted to
// assignments that are still pending. Read-only.
func (d *TaskDistributor) replayToday(userID uint, today string) (*DistributionResult, error) {
	var snapshot models.DailyTaskSet
	if err := d.db.Where("user_id = ? AND day = ?", userID, today).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DistributionResult{Assignments: []models.TaskAssignment{}}, nil
		}
		return nil, err
	}
	ids := snapshot.TaskIDs()
	if len(ids) == 0 {
		return &DistributionResult{Assignments: []models.TaskAssignment{}}, nil
	}
	var assignments []models.TaskAssignment
	if err := d.db.
		Where("user_id = ? AND task_id IN ? AND status = ?", userID, ids, models.AssignmentPending).
		Order("task_id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return &DistributionResult{Assignments: assignments, IsNewAssignment: false}, nil
}

// ExpireOverdueAssignments flips pending assignments whose day has passed to
// the terminal expired status. Called from the nightly job.
func (d *TaskDistributor) ExpireOverdueAssignments() (int64, error) {
	res := d.db.Model(&models.TaskAssignment{}).
		Where("status = ? AND expires_at < ?", models.AssignmentPending, d.clock.Now().In(d.loc)).
		Update("status", models.AssignmentExpired)
	return res.RowsAffected, res.Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
