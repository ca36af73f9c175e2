package models

import "time"

// TaskSubmission is a live completion-proof record awaiting review. The daily
// archival sweep moves every row, reviewed or not, into TaskSubmissionArchive.
type TaskSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Reference    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	TaskID       uint      `gorm:"not null;index" json:"task_id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	ProofURL     string    `gorm:"type:varchar(255)" json:"proof_url"`
	Note         *string   `gorm:"type:text" json:"note,omitempty"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}

// Submission review statuses.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// TaskSubmissionArchive is the immutable history row a live submission becomes
// after the daily sweep. SubmissionDate preserves the original submission
// timestamp; ArchivedDate is the day the sweep ran.
type TaskSubmissionArchive struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Reference      string    `gorm:"type:varchar(64);index;not null" json:"reference"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	TaskID         uint      `gorm:"not null" json:"task_id"`
	AssignmentID   uint      `gorm:"not null" json:"assignment_id"`
	ProofURL       string    `gorm:"type:varchar(255)" json:"proof_url"`
	Note           *string   `gorm:"type:text" json:"note,omitempty"`
	Status         string    `gorm:"type:varchar(20);not null" json:"status"`
	SubmissionDate time.Time `gorm:"not null" json:"submission_date"`
	ArchivedDate   string    `gorm:"type:varchar(10);not null;index" json:"archived_date"`
	CreatedAt      time.Time `json:"-"`
}

func (TaskSubmissionArchive) TableName() string {
	return "task_submission_archives"
}
