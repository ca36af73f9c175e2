package services

import (
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

// Referral bonus amounts. Direct pays the inviter, indirect pays the
// inviter's inviter. Fixed at build time.
const (
	directReferralBonus   = 5.00
	indirectReferralBonus = 2.00
)

// Settlement turns review and approval decisions into ledger movements.
type Settlement struct {
	db     *gorm.DB
	ledger *Ledger
	clock  clockwork.Clock
	log    *zap.Logger
}

func NewSettlement(db *gorm.DB, ledger *Ledger, clock clockwork.Clock, log *zap.Logger) *Settlement {
	return &Settlement{db: db, ledger: ledger, clock: clock, log: log}
}

// ApproveSubmission marks a pending submission approved, bumps the task's
// completion counter, completes the assignment, and credits the user the
// assignment's final reward under the tasks category. All of it commits or
// none of it does.
func (s *Settlement) ApproveSubmission(submissionID uint) (*models.Account, error) {
	var userID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sub models.TaskSubmission
		if err := tx.First(&sub, submissionID).Error; err != nil {
			return err
		}
		if sub.Status != models.SubmissionPending {
			return fmt.Errorf("submission %d: %w", sub.ID, ErrSubmissionResolved)
		}
		userID = sub.UserID

		var task models.Task
		if err := tx.First(&task, sub.TaskID).Error; err != nil {
			return err
		}
		if !task.CompletionCreditable() {
			return &TaskNotCreditableError{TaskID: task.ID}
		}

		var assignment models.TaskAssignment
		if err := tx.Where("user_id = ? AND task_id = ?", sub.UserID, sub.TaskID).
			First(&assignment).Error; err != nil {
			return err
		}

		// Conditional flip: a concurrent approval that already resolved the
		// submission makes this a no-op instead of a double credit.
		flip := tx.Model(&models.TaskSubmission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionPending).
			Update("status", models.SubmissionApproved)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return fmt.Errorf("submission %d: %w", sub.ID, ErrSubmissionResolved)
		}
		if err := tx.Model(&task).
			Update("completion_count", gorm.Expr("completion_count + ?", 1)).Error; err != nil {
			return err
		}
		now := s.clock.Now()
		// Terminal statuses are immutable; only a pending assignment completes.
		if err := tx.Model(&models.TaskAssignment{}).
			Where("id = ? AND status = ?", assignment.ID, models.AssignmentPending).
			Updates(map[string]interface{}{
				"status":       models.AssignmentCompleted,
				"completed_at": now,
			}).Error; err != nil {
			return err
		}

		return s.ledger.credit(tx, sub.UserID, assignment.FinalReward, CategoryTasks,
			"Task reward: "+task.Title)
	})
	if err != nil {
		return nil, err
	}
	return s.ledger.GetOrCreate(userID)
}

// RejectSubmission resolves a pending submission without crediting anything.
func (s *Settlement) RejectSubmission(submissionID uint, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sub models.TaskSubmission
		if err := tx.First(&sub, submissionID).Error; err != nil {
			return err
		}
		if sub.Status != models.SubmissionPending {
			return fmt.Errorf("submission %d: %w", sub.ID, ErrSubmissionResolved)
		}
		updates := map[string]interface{}{"status": models.SubmissionRejected}
		if reason != "" {
			updates["note"] = reason
		}
		flip := tx.Model(&models.TaskSubmission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionPending).
			Updates(updates)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return fmt.Errorf("submission %d: %w", sub.ID, ErrSubmissionResolved)
		}
		return nil
	})
}

// PayReferralBonuses credits the referral chain of a newly activated user:
// the direct inviter and, one level up, the indirect one. A missing chain
// link just stops the walk.
func (s *Settlement) PayReferralBonuses(newUserID uint) error {
	var user models.User
	if err := s.db.First(&user, newUserID).Error; err != nil {
		return err
	}
	if user.ReffBy == nil {
		return nil
	}

	if _, err := s.ledger.Credit(*user.ReffBy, directReferralBonus, CategoryReferral,
		fmt.Sprintf("Direct referral bonus for inviting %s", user.Name)); err != nil {
		return fmt.Errorf("direct referral credit: %w", err)
	}

	var direct models.User
	if err := s.db.First(&direct, *user.ReffBy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if direct.ReffBy == nil {
		return nil
	}
	if _, err := s.ledger.Credit(*direct.ReffBy, indirectReferralBonus, CategoryReferral,
		fmt.Sprintf("Indirect referral bonus via %s", direct.Name)); err != nil {
		return fmt.Errorf("indirect referral credit: %w", err)
	}
	return nil
}

// ApprovePayment marks a pending deposit successful, credits the amount, and
// activates the purchased membership when the payment carries one.
func (s *Settlement) ApprovePayment(paymentID uint) (*models.Account, error) {
	var userID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		if payment.Status != "Pending" {
			return fmt.Errorf("payment %s already %s", payment.OrderID, payment.Status)
		}
		userID = payment.UserID

		if err := tx.Model(&payment).Update("status", "Success").Error; err != nil {
			return err
		}
		if payment.MembershipID != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", payment.UserID).
				Update("membership_id", *payment.MembershipID).Error; err != nil {
				return err
			}
		}
		return s.ledger.credit(tx, payment.UserID, payment.Amount, CategoryPayment,
			"Deposit "+payment.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return s.ledger.GetOrCreate(userID)
}

// CompleteWithdrawal debits the withdrawal amount and marks the request
// successful. Debit and status flip share one transaction; a retry after any
// failure finds the request still Pending with the balance untouched, so a
// single request can never be debited twice. An insufficient balance marks the
// request Failed so it does not hang in review forever.
func (s *Settlement) CompleteWithdrawal(withdrawalID uint) (*models.Account, error) {
	var wd models.Withdrawal
	if err := s.db.First(&wd, withdrawalID).Error; err != nil {
		return nil, err
	}
	if wd.Status != "Pending" {
		return nil, fmt.Errorf("withdrawal %s already %s", wd.OrderID, wd.Status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", wd.ID, "Pending").
			Update("status", "Success")
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("withdrawal %s already resolved", wd.OrderID)
		}
		return s.ledger.debit(tx, wd.UserID, wd.Amount, ReasonWithdrawal, "Withdrawal "+wd.OrderID)
	})
	if err != nil {
		var insufficient *InsufficientBalanceError
		if errors.As(err, &insufficient) {
			markRes := s.db.Model(&models.Withdrawal{}).
				Where("id = ? AND status = ?", wd.ID, "Pending").
				Update("status", "Failed")
			if markRes.Error != nil {
				s.log.Error("failed to mark withdrawal failed",
					zap.String("order_id", wd.OrderID), zap.Error(markRes.Error))
			}
		}
		return nil, err
	}
	return s.ledger.GetOrCreate(wd.UserID)
}
