package models

import (
	"encoding/json"
	"time"
)

// TaskDistributionGate marks the last time the distributor ran for a user. One
// row per user. Only the date component of LastRequestedAt matters; the
// distributor compares it against "today" before assigning anything.
type TaskDistributionGate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	LastRequestedAt time.Time `gorm:"not null" json:"last_requested_at"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

func (TaskDistributionGate) TableName() string {
	return "task_distribution_gates"
}

// DailyTaskSet records which tasks were handed to a user on a given day,
// together with the membership context in force at the time. Immutable once
// written; same-day re-queries replay from it instead of selecting again.
type DailyTaskSet struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;uniqueIndex:idx_user_day" json:"user_id"`
	Day               string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_user_day" json:"day"`
	AssignedTaskIDs   string    `gorm:"type:text;not null" json:"assigned_task_ids"`
	TasksAssigned     int       `gorm:"not null" json:"tasks_assigned"`
	MembershipID      uint      `gorm:"not null" json:"membership_id"`
	MembershipLimit   int       `gorm:"not null" json:"membership_limit"`
	CreatedAt         time.Time `json:"created_at"`
}

func (DailyTaskSet) TableName() string {
	return "daily_task_sets"
}

// TaskIDs decodes the stored id set. A corrupt column yields an empty set
// rather than an error; the snapshot is an audit record, not the gate.
func (s *DailyTaskSet) TaskIDs() []uint {
	var ids []uint
	if err := json.Unmarshal([]byte(s.AssignedTaskIDs), &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeTaskIDs serializes an id set for the AssignedTaskIDs column.
func EncodeTaskIDs(ids []uint) string {
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}
