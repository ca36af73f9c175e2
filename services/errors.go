package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount rejects zero or negative ledger amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrInvalidCategory rejects income categories outside the known set.
	ErrInvalidCategory = errors.New("unknown income category")
	// ErrSubmissionResolved rejects review actions on already-resolved submissions.
	ErrSubmissionResolved = errors.New("submission already resolved")
)

// NoMembershipError means the user has no active tier and cannot receive tasks.
type NoMembershipError struct {
	UserID uint
}

func (e *NoMembershipError) Error() string {
	return fmt.Sprintf("user %d has no active membership", e.UserID)
}

// InsufficientBalanceError is returned when a debit would push an account
// below zero. The debit is rejected whole; balances are never left partial.
type InsufficientBalanceError struct {
	UserID    uint
	Requested float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("user %d: insufficient balance: requested %.2f, available %.2f",
		e.UserID, e.Requested, e.Available)
}

// DuplicateAssignmentError indicates the historical-exclusion rule was
// violated. It points at a data-integrity bug and is surfaced, never swallowed.
type DuplicateAssignmentError struct {
	UserID uint
	TaskID uint
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("user %d already holds an assignment for task %d", e.UserID, e.TaskID)
}

// TaskNotCreditableError means a submission was approved for a task whose
// completion threshold has already been passed; no credit is issued.
type TaskNotCreditableError struct {
	TaskID uint
}

func (e *TaskNotCreditableError) Error() string {
	return fmt.Sprintf("task %d is past its completion threshold", e.TaskID)
}

// ArchivalRecordError wraps a per-record failure during the archival sweep.
// Individual failures are collected and do not abort the rest of the batch.
type ArchivalRecordError struct {
	SubmissionID uint
	Err          error
}

func (e *ArchivalRecordError) Error() string {
	return fmt.Sprintf("archive submission %d: %v", e.SubmissionID, e.Err)
}

func (e *ArchivalRecordError) Unwrap() error {
	return e.Err
}
