package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

func TestGetOrCreateReturnsSameAccount(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "811111111", nil, nil)

	first, err := f.ledger.GetOrCreate(user.ID)
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}
	second, err := f.ledger.GetOrCreate(user.ID)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one account, got ids %d and %d", first.ID, second.ID)
	}
	if first.Balance != 0 || first.TotalEarned != 0 {
		t.Fatalf("fresh account not zeroed: %+v", first)
	}

	var count int64
	f.db.Model(&models.Account{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 account row, got %d", count)
	}
}

func TestCreditFreshAccountFillsOnlyItsBucket(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "812222222", nil, nil)

	acct, err := f.ledger.Credit(user.ID, 5.00, CategoryReferral, "invite bonus")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if acct.Balance != 5.00 || acct.TotalEarned != 5.00 {
		t.Fatalf("balance/total_earned = %.2f/%.2f, want 5.00/5.00", acct.Balance, acct.TotalEarned)
	}
	if acct.ReferralIncome != 5.00 {
		t.Fatalf("referral_income = %.2f, want 5.00", acct.ReferralIncome)
	}
	if acct.TasksIncome != 0 || acct.BonusIncome != 0 {
		t.Fatalf("other buckets touched: tasks=%.2f bonus=%.2f", acct.TasksIncome, acct.BonusIncome)
	}

	var trx models.Transaction
	if err := f.db.Where("user_id = ?", user.ID).First(&trx).Error; err != nil {
		t.Fatalf("journal row missing: %v", err)
	}
	if trx.TransactionFlow != "credit" || trx.TransactionType != "referral" {
		t.Fatalf("journal flow/type = %s/%s", trx.TransactionFlow, trx.TransactionType)
	}
}

func TestCreditRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "813333333", nil, nil)

	if _, err := f.ledger.Credit(user.ID, 0, CategoryBonus, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := f.ledger.Credit(user.ID, -3, CategoryBonus, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := f.ledger.Credit(user.ID, 1, IncomeCategory("lottery"), ""); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("unknown category: got %v, want ErrInvalidCategory", err)
	}
}

func TestDebitInsufficientBalanceLeavesAccountUntouched(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "814444444", nil, nil)
	if _, err := f.ledger.Credit(user.ID, 10.00, CategoryGeneral, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	_, err := f.ledger.Debit(user.ID, 15.00, ReasonWithdrawal, "cash out")
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientBalanceError", err)
	}
	if insufficient.Requested != 15.00 || insufficient.Available != 10.00 {
		t.Fatalf("error context = %.2f/%.2f, want 15.00/10.00", insufficient.Requested, insufficient.Available)
	}

	acct := f.reloadAccount(t, user.ID)
	if acct.Balance != 10.00 {
		t.Fatalf("balance changed to %.2f after rejected debit", acct.Balance)
	}
	if acct.TotalWithdrawals != 0 {
		t.Fatalf("total_withdrawals changed to %.2f after rejected debit", acct.TotalWithdrawals)
	}
}

func TestDebitWithdrawalTracksTotal(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "815555555", nil, nil)
	if _, err := f.ledger.Credit(user.ID, 50.00, CategoryTasks, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	acct, err := f.ledger.Debit(user.ID, 20.00, ReasonWithdrawal, "cash out")
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if acct.Balance != 30.00 {
		t.Fatalf("balance = %.2f, want 30.00", acct.Balance)
	}
	if acct.TotalWithdrawals != 20.00 {
		t.Fatalf("total_withdrawals = %.2f, want 20.00", acct.TotalWithdrawals)
	}

	// Non-withdrawal debits leave the withdrawal total alone.
	if _, err := f.ledger.Debit(user.ID, 5.00, ReasonAdjustment, "fix"); err != nil {
		t.Fatalf("adjustment debit: %v", err)
	}
	acct = f.reloadAccount(t, user.ID)
	if acct.TotalWithdrawals != 20.00 {
		t.Fatalf("adjustment debit moved total_withdrawals to %.2f", acct.TotalWithdrawals)
	}
}

func TestHasSufficientBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "816666666", nil, nil)

	// No account yet: only a zero ask passes.
	ok, err := f.ledger.HasSufficientBalance(user.ID, 1)
	if err != nil || ok {
		t.Fatalf("missing account: ok=%v err=%v, want false/nil", ok, err)
	}

	if _, err := f.ledger.Credit(user.ID, 7.50, CategoryBonus, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}
	ok, _ = f.ledger.HasSufficientBalance(user.ID, 7.50)
	if !ok {
		t.Fatal("exact balance should be sufficient")
	}
	ok, _ = f.ledger.HasSufficientBalance(user.ID, 7.51)
	if ok {
		t.Fatal("7.51 should exceed a 7.50 balance")
	}
}

func TestTransferMovesFundsBetweenAccounts(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "817777777", nil, nil)
	bob := f.createUser(t, "818888888", nil, nil)
	if _, err := f.ledger.Credit(alice.ID, 40.00, CategoryGeneral, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	if err := f.ledger.Transfer(alice.ID, bob.ID, 15.00, "rent"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := f.reloadAccount(t, alice.ID).Balance; got != 25.00 {
		t.Fatalf("sender balance = %.2f, want 25.00", got)
	}
	if got := f.reloadAccount(t, bob.ID).Balance; got != 15.00 {
		t.Fatalf("receiver balance = %.2f, want 15.00", got)
	}

	var flows []string
	f.db.Model(&models.Transaction{}).Order("id ASC").Pluck("transaction_type", &flows)
	want := map[string]bool{"transfer": false}
	for _, fl := range flows {
		if _, ok := want[fl]; ok {
			want[fl] = true
		}
	}
	if !want["transfer"] {
		t.Fatalf("transfer journal entries missing, got types %v", flows)
	}
}

func TestTransferInsufficientFundsFailsWhole(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "819999999", nil, nil)
	bob := f.createUser(t, "811111112", nil, nil)
	if _, err := f.ledger.Credit(alice.ID, 5.00, CategoryGeneral, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	err := f.ledger.Transfer(alice.ID, bob.ID, 20.00, "too much")
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientBalanceError", err)
	}
	if got := f.reloadAccount(t, alice.ID).Balance; got != 5.00 {
		t.Fatalf("sender balance = %.2f, want untouched 5.00", got)
	}
}

// A failed credit leg must put the debited amount back on the source. This is
// a compensating credit, not a two-phase commit: the test documents the
// eventual-consistency exception, not a transactional guarantee.
func TestTransferCompensatesFailedCreditLeg(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "812222223", nil, nil)
	bob := f.createUser(t, "813333334", nil, nil)
	if _, err := f.ledger.Credit(alice.ID, 30.00, CategoryGeneral, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}

	f.ledger.creditFn = func(tx *gorm.DB, userID uint, amount float64, category IncomeCategory, note string) error {
		return fmt.Errorf("storage briefly offline")
	}
	err := f.ledger.Transfer(alice.ID, bob.ID, 10.00, "doomed")
	if err == nil {
		t.Fatal("expected transfer error when credit leg fails")
	}

	if got := f.reloadAccount(t, alice.ID).Balance; got != 30.00 {
		t.Fatalf("sender balance = %.2f, want compensated 30.00", got)
	}
	var bobAcct models.Account
	if err := f.db.Where("user_id = ?", bob.ID).First(&bobAcct).Error; err == nil && bobAcct.Balance != 0 {
		t.Fatalf("receiver balance = %.2f, want 0.00", bobAcct.Balance)
	}

	var rollback models.Transaction
	if err := f.db.Where("user_id = ? AND transaction_type = ?", alice.ID, "rollback").
		First(&rollback).Error; err != nil {
		t.Fatalf("rollback journal entry missing: %v", err)
	}
}
