package services

import (
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

// IncomeCategory tags a credit so earnings can be broken down per source.
// The set is closed; anything else is rejected at the API boundary.
type IncomeCategory string

const (
	CategoryTasks    IncomeCategory = "tasks"
	CategoryReferral IncomeCategory = "referral"
	CategoryBonus    IncomeCategory = "bonus"
	CategoryPayment  IncomeCategory = "payment"
	CategoryGeneral  IncomeCategory = "general"
	CategoryTransfer IncomeCategory = "transfer"
	CategoryRollback IncomeCategory = "rollback"
)

func (c IncomeCategory) Valid() bool {
	switch c {
	case CategoryTasks, CategoryReferral, CategoryBonus, CategoryPayment,
		CategoryGeneral, CategoryTransfer, CategoryRollback:
		return true
	}
	return false
}

// bucketColumn maps a category to its per-account income column. Categories
// without a dedicated bucket only move balance and total_earned.
func (c IncomeCategory) bucketColumn() string {
	switch c {
	case CategoryTasks:
		return "tasks_income"
	case CategoryReferral:
		return "referral_income"
	case CategoryBonus:
		return "bonus_income"
	}
	return ""
}

// DebitReason tags a debit in the transaction journal.
type DebitReason string

const (
	ReasonWithdrawal DebitReason = "withdrawal"
	ReasonTransfer   DebitReason = "transfer"
	ReasonAdjustment DebitReason = "adjustment"
)

// Ledger owns account balances and categorized income. Every mutation is a
// single conditional UPDATE inside a transaction, so concurrent operations on
// the same account serialize at the storage layer and the balance can never
// be observed negative.
type Ledger struct {
	db    *gorm.DB
	clock clockwork.Clock
	log   *zap.Logger

	// creditFn is an indirection over credit for tests that need the credit
	// leg of a Transfer to fail.
	creditFn func(tx *gorm.DB, userID uint, amount float64, category IncomeCategory, note string) error
}

func NewLedger(db *gorm.DB, clock clockwork.Clock, log *zap.Logger) *Ledger {
	l := &Ledger{db: db, clock: clock, log: log}
	l.creditFn = l.credit
	return l
}

// GetOrCreate returns the account for a user, creating a zeroed one on first
// access. Safe to race for the same user: the unique index on user_id makes
// the loser of a concurrent create fall back to the winner's row.
func (l *Ledger) GetOrCreate(userID uint) (*models.Account, error) {
	return l.getOrCreate(l.db, userID)
}

func (l *Ledger) getOrCreate(db *gorm.DB, userID uint) (*models.Account, error) {
	var acct models.Account
	err := db.Where("user_id = ?", userID).First(&acct).Error
	if err == nil {
		return &acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	acct = models.Account{UserID: userID, IsActive: true, LastActivityAt: l.clock.Now()}
	if createErr := db.Create(&acct).Error; createErr != nil {
		// Lost a concurrent create; the row exists now.
		if requeryErr := db.Where("user_id = ?", userID).First(&acct).Error; requeryErr != nil {
			return nil, createErr
		}
	}
	return &acct, nil
}

// HasSufficientBalance is a pure read; a user without an account has balance 0.
func (l *Ledger) HasSufficientBalance(userID uint, amount float64) (bool, error) {
	var acct models.Account
	if err := l.db.Where("user_id = ?", userID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return amount <= 0, nil
		}
		return false, err
	}
	return acct.Balance >= amount, nil
}

// Credit adds funds to an account under the given category and journals the
// movement. Fails whole on non-positive amounts or unknown categories.
func (l *Ledger) Credit(userID uint, amount float64, category IncomeCategory, note string) (*models.Account, error) {
	if err := l.db.Transaction(func(tx *gorm.DB) error {
		return l.credit(tx, userID, amount, category, note)
	}); err != nil {
		return nil, err
	}
	return l.GetOrCreate(userID)
}

func (l *Ledger) credit(tx *gorm.DB, userID uint, amount float64, category IncomeCategory, note string) error {
	if amount <= 0 {
		return fmt.Errorf("credit %.2f for user %d: %w", amount, userID, ErrInvalidAmount)
	}
	if !category.Valid() {
		return fmt.Errorf("credit for user %d, category %q: %w", userID, category, ErrInvalidCategory)
	}
	if _, err := l.getOrCreate(tx, userID); err != nil {
		return err
	}

	amount = utils.RoundFloat(amount, 2)
	updates := map[string]interface{}{
		"balance":          gorm.Expr("balance + ?", amount),
		"total_earned":     gorm.Expr("total_earned + ?", amount),
		"last_activity_at": l.clock.Now(),
	}
	if col := category.bucketColumn(); col != "" {
		updates[col] = gorm.Expr(col+" + ?", amount)
	}
	if err := tx.Model(&models.Account{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	msg := note
	trx := models.Transaction{
		UserID:          userID,
		Amount:          amount,
		OrderID:         utils.GenerateOrderID(userID),
		TransactionFlow: "credit",
		TransactionType: string(category),
		Message:         &msg,
		Status:          "Success",
	}
	return tx.Create(&trx).Error
}

// Debit removes funds from an account. The balance check rides in the WHERE
// clause of the update, so an insufficient balance rejects the whole debit and
// two racing debits cannot both drain the same funds.
func (l *Ledger) Debit(userID uint, amount float64, reason DebitReason, note string) (*models.Account, error) {
	if err := l.db.Transaction(func(tx *gorm.DB) error {
		return l.debit(tx, userID, amount, reason, note)
	}); err != nil {
		return nil, err
	}
	return l.GetOrCreate(userID)
}

func (l *Ledger) debit(tx *gorm.DB, userID uint, amount float64, reason DebitReason, note string) error {
	if amount <= 0 {
		return fmt.Errorf("debit %.2f for user %d: %w", amount, userID, ErrInvalidAmount)
	}
	amount = utils.RoundFloat(amount, 2)

	acct, err := l.getOrCreate(tx, userID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"balance":          gorm.Expr("balance - ?", amount),
		"last_activity_at": l.clock.Now(),
	}
	if reason == ReasonWithdrawal {
		updates["total_withdrawals"] = gorm.Expr("total_withdrawals + ?", amount)
	}
	res := tx.Model(&models.Account{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InsufficientBalanceError{UserID: userID, Requested: amount, Available: acct.Balance}
	}

	msg := note
	trx := models.Transaction{
		UserID:          userID,
		Amount:          amount,
		OrderID:         utils.GenerateOrderID(userID),
		TransactionFlow: "debit",
		TransactionType: string(reason),
		Message:         &msg,
		Status:          "Success",
	}
	return tx.Create(&trx).Error
}

// Transfer moves funds between two accounts as debit-then-credit. When the
// credit leg fails after a successful debit, the source is compensated with a
// rollback credit. The compensation is best-effort, not a two-phase commit; a
// storage layer that is failing outright can leave it unapplied, which is
// logged at error level for the operator.
func (l *Ledger) Transfer(fromUserID, toUserID uint, amount float64, note string) error {
	if _, err := l.Debit(fromUserID, amount, ReasonTransfer, note); err != nil {
		return err
	}

	creditErr := l.db.Transaction(func(tx *gorm.DB) error {
		return l.creditFn(tx, toUserID, amount, CategoryTransfer, note)
	})
	if creditErr == nil {
		return nil
	}

	if _, compErr := l.Credit(fromUserID, amount, CategoryRollback, "transfer rollback"); compErr != nil {
		l.log.Error("transfer compensation failed, funds in limbo",
			zap.Uint("from_user_id", fromUserID),
			zap.Uint("to_user_id", toUserID),
			zap.Float64("amount", amount),
			zap.Error(compErr))
		return fmt.Errorf("transfer credit failed (%v), compensation failed: %w", creditErr, compErr)
	}
	return fmt.Errorf("transfer credit leg failed, source compensated: %w", creditErr)
}
