package models

import "time"

// Task is a pool entry users can be assigned. Two independent counters gate two
// independent behaviors: distribution stops once distribution_count reaches its
// threshold, completion crediting stops once completion_count passes its
// threshold (inclusive).
type Task struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Title                 string    `gorm:"type:varchar(150);not null" json:"title"`
	Description           string    `gorm:"type:text" json:"description"`
	Benefit               float64   `gorm:"type:decimal(15,2);not null" json:"benefit"`
	TargetURL             string    `gorm:"type:varchar(255)" json:"target_url"`
	IsActive              bool      `gorm:"not null;default:true" json:"is_active"`
	DistributionCount     int64     `gorm:"not null;default:0" json:"distribution_count"`
	DistributionThreshold int64     `gorm:"not null;default:0" json:"distribution_threshold"`
	CompletionCount       int64     `gorm:"not null;default:0" json:"completion_count"`
	CompletionThreshold   int64     `gorm:"not null;default:0" json:"completion_threshold"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// DistributionEligible reports whether the task may still be handed out.
func (t *Task) DistributionEligible() bool {
	return t.IsActive && t.DistributionCount < t.DistributionThreshold
}

// CompletionCreditable reports whether an approved submission for the task may
// still be credited. The inclusive comparison is intentional and differs from
// distribution eligibility.
func (t *Task) CompletionCreditable() bool {
	return t.CompletionCount <= t.CompletionThreshold
}

// TaskAssignment links one user to one task. A user never receives the same
// task twice across their lifetime; the composite unique index is the backstop
// behind the selection query.
type TaskAssignment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_task" json:"user_id"`
	TaskID      uint       `gorm:"not null;index;uniqueIndex:idx_user_task" json:"task_id"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	FinalReward float64    `gorm:"type:decimal(15,2);not null" json:"final_reward"`
	AssignedAt  time.Time  `gorm:"not null" json:"assigned_at"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

// Assignment statuses. completed and expired are terminal.
const (
	AssignmentPending   = "pending"
	AssignmentCompleted = "completed"
	AssignmentExpired   = "expired"
)
