package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/models"
)

// seedApprovable wires a user, task, assignment and pending submission so a
// settlement flow can run end to end.
func (f *fixture) seedApprovable(t *testing.T, reward float64, compThreshold int64) (*models.User, *models.Task, *models.TaskSubmission) {
	t.Helper()
	tier := f.createMembership(t, "Basic", 3)
	user := f.createUser(t, "851111111", uintPtr(tier.ID), nil)
	task := f.createTask(t, "review me", reward, 10, compThreshold)

	assignment := models.TaskAssignment{
		UserID:      user.ID,
		TaskID:      task.ID,
		Status:      models.AssignmentPending,
		FinalReward: reward,
		AssignedAt:  testDay,
		ExpiresAt:   testDay.Add(14 * time.Hour),
	}
	if err := f.db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	sub := &models.TaskSubmission{
		Reference:    "SUB-SETTLE",
		UserID:       user.ID,
		TaskID:       task.ID,
		AssignmentID: assignment.ID,
		Status:       models.SubmissionPending,
		SubmittedAt:  testDay,
	}
	if err := f.db.Create(sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return user, task, sub
}

func TestApproveSubmissionCreditsAndCompletes(t *testing.T) {
	f := newFixture(t)
	user, task, sub := f.seedApprovable(t, 2.50, 10)

	acct, err := f.settlement.ApproveSubmission(sub.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if acct.Balance != 2.50 || acct.TasksIncome != 2.50 || acct.TotalEarned != 2.50 {
		t.Fatalf("account = %+v, want 2.50 in balance, tasks_income, total_earned", acct)
	}

	var reviewed models.TaskSubmission
	f.db.First(&reviewed, sub.ID)
	if reviewed.Status != models.SubmissionApproved {
		t.Fatalf("submission status = %s, want approved", reviewed.Status)
	}

	if got := f.reloadTask(t, task.ID).CompletionCount; got != 1 {
		t.Fatalf("completion_count = %d, want 1", got)
	}

	var assignment models.TaskAssignment
	f.db.Where("user_id = ? AND task_id = ?", user.ID, task.ID).First(&assignment)
	if assignment.Status != models.AssignmentCompleted {
		t.Fatalf("assignment status = %s, want completed", assignment.Status)
	}
	if assignment.CompletedAt == nil || !assignment.CompletedAt.Equal(testDay) {
		t.Fatalf("completed_at = %v, want the approval time", assignment.CompletedAt)
	}

	var journal models.Transaction
	if err := f.db.Where("user_id = ? AND transaction_type = ?", user.ID, "tasks").
		First(&journal).Error; err != nil {
		t.Fatalf("journal row missing: %v", err)
	}
	if journal.TransactionFlow != "credit" || journal.Amount != 2.50 {
		t.Fatalf("journal = %+v, want a 2.50 credit", journal)
	}
}

func TestApproveSubmissionTwiceFails(t *testing.T) {
	f := newFixture(t)
	_, _, sub := f.seedApprovable(t, 2.50, 10)

	if _, err := f.settlement.ApproveSubmission(sub.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := f.settlement.ApproveSubmission(sub.ID)
	if !errors.Is(err, ErrSubmissionResolved) {
		t.Fatalf("second approve: got %v, want ErrSubmissionResolved", err)
	}

	// No double credit.
	var journalCount int64
	f.db.Model(&models.Transaction{}).Where("transaction_type = ?", "tasks").Count(&journalCount)
	if journalCount != 1 {
		t.Fatalf("%d task-credit journal rows, want 1", journalCount)
	}
}

func TestApprovalAtCompletionThresholdStillCredits(t *testing.T) {
	f := newFixture(t)
	user, task, sub := f.seedApprovable(t, 1.00, 4)
	f.db.Model(task).Update("completion_count", 4)

	acct, err := f.settlement.ApproveSubmission(sub.ID)
	if err != nil {
		t.Fatalf("approve at threshold: %v", err)
	}
	if acct.Balance != 1.00 {
		t.Fatalf("balance = %.2f, want 1.00", acct.Balance)
	}
	if got := f.reloadTask(t, task.ID).CompletionCount; got != 5 {
		t.Fatalf("completion_count = %d, want 5", got)
	}
	_ = user
}

func TestApprovalPastCompletionThresholdFails(t *testing.T) {
	f := newFixture(t)
	user, task, sub := f.seedApprovable(t, 1.00, 4)
	f.db.Model(task).Update("completion_count", 5)

	_, err := f.settlement.ApproveSubmission(sub.ID)
	var notCreditable *TaskNotCreditableError
	if !errors.As(err, &notCreditable) || notCreditable.TaskID != task.ID {
		t.Fatalf("got %v, want TaskNotCreditableError for task %d", err, task.ID)
	}

	// The whole approval rolled back: submission still pending, no credit.
	var reviewed models.TaskSubmission
	f.db.First(&reviewed, sub.ID)
	if reviewed.Status != models.SubmissionPending {
		t.Fatalf("submission status = %s, want still pending", reviewed.Status)
	}
	if acct, _ := f.ledger.GetOrCreate(user.ID); acct.Balance != 0 {
		t.Fatalf("balance = %.2f after rejected approval", acct.Balance)
	}
}

func TestRejectSubmissionRecordsReason(t *testing.T) {
	f := newFixture(t)
	user, _, sub := f.seedApprovable(t, 2.00, 10)

	if err := f.settlement.RejectSubmission(sub.ID, "blurry screenshot"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	var reviewed models.TaskSubmission
	f.db.First(&reviewed, sub.ID)
	if reviewed.Status != models.SubmissionRejected {
		t.Fatalf("status = %s, want rejected", reviewed.Status)
	}
	if reviewed.Note == nil || *reviewed.Note != "blurry screenshot" {
		t.Fatalf("note = %v, want the rejection reason", reviewed.Note)
	}
	if acct, _ := f.ledger.GetOrCreate(user.ID); acct.Balance != 0 {
		t.Fatalf("rejected submission credited %.2f", acct.Balance)
	}

	if err := f.settlement.RejectSubmission(sub.ID, "again"); !errors.Is(err, ErrSubmissionResolved) {
		t.Fatalf("double reject: got %v, want ErrSubmissionResolved", err)
	}
}

func TestPayReferralBonusesWalksTwoLevels(t *testing.T) {
	f := newFixture(t)
	grandparent := f.createUser(t, "861111111", nil, nil)
	parent := f.createUser(t, "862222222", nil, uintPtr(grandparent.ID))
	child := f.createUser(t, "863333333", nil, uintPtr(parent.ID))

	if err := f.settlement.PayReferralBonuses(child.ID); err != nil {
		t.Fatalf("pay bonuses: %v", err)
	}

	parentAcct := f.reloadAccount(t, parent.ID)
	if parentAcct.Balance != 5.00 || parentAcct.ReferralIncome != 5.00 {
		t.Fatalf("direct inviter account = %+v, want 5.00 referral income", parentAcct)
	}
	grandAcct := f.reloadAccount(t, grandparent.ID)
	if grandAcct.Balance != 2.00 || grandAcct.ReferralIncome != 2.00 {
		t.Fatalf("indirect inviter account = %+v, want 2.00 referral income", grandAcct)
	}
}

func TestPayReferralBonusesStopsWhenChainEnds(t *testing.T) {
	f := newFixture(t)
	parent := f.createUser(t, "864444444", nil, nil)
	child := f.createUser(t, "865555555", nil, uintPtr(parent.ID))

	if err := f.settlement.PayReferralBonuses(child.ID); err != nil {
		t.Fatalf("pay bonuses: %v", err)
	}
	if acct := f.reloadAccount(t, parent.ID); acct.Balance != 5.00 {
		t.Fatalf("direct bonus = %.2f, want 5.00", acct.Balance)
	}

	orphan := f.createUser(t, "866666666", nil, nil)
	if err := f.settlement.PayReferralBonuses(orphan.ID); err != nil {
		t.Fatalf("no-inviter user should settle as a no-op, got %v", err)
	}
}

func TestApprovePaymentCreditsAndActivatesMembership(t *testing.T) {
	f := newFixture(t)
	tier := f.createMembership(t, "Gold", 10)
	user := f.createUser(t, "867777777", nil, nil)
	payment := models.Payment{
		UserID:       user.ID,
		MembershipID: uintPtr(tier.ID),
		Amount:       50.00,
		OrderID:      "VB-PAY-1",
		Status:       "Pending",
	}
	if err := f.db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	acct, err := f.settlement.ApprovePayment(payment.ID)
	if err != nil {
		t.Fatalf("approve payment: %v", err)
	}
	if acct.Balance != 50.00 {
		t.Fatalf("balance = %.2f, want 50.00", acct.Balance)
	}
	// Deposits are not earnings; no bucket moves.
	if acct.TasksIncome != 0 || acct.ReferralIncome != 0 || acct.BonusIncome != 0 {
		t.Fatalf("deposit leaked into an income bucket: %+v", acct)
	}

	var reloaded models.User
	f.db.First(&reloaded, user.ID)
	if reloaded.MembershipID == nil || *reloaded.MembershipID != tier.ID {
		t.Fatalf("membership not activated: %v", reloaded.MembershipID)
	}

	if _, err := f.settlement.ApprovePayment(payment.ID); err == nil {
		t.Fatal("re-approving a settled payment must fail")
	}
}

func TestCompleteWithdrawalDebitsBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "868888888", nil, nil)
	if _, err := f.ledger.Credit(user.ID, 100.00, CategoryTasks, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}
	wd := models.Withdrawal{
		UserID:      user.ID,
		Amount:      40.00,
		Charge:      2.00,
		FinalAmount: 38.00,
		OrderID:     "VB-WD-1",
		Status:      "Pending",
	}
	if err := f.db.Create(&wd).Error; err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}

	acct, err := f.settlement.CompleteWithdrawal(wd.ID)
	if err != nil {
		t.Fatalf("complete withdrawal: %v", err)
	}
	if acct.Balance != 60.00 || acct.TotalWithdrawals != 40.00 {
		t.Fatalf("account = %+v, want balance 60.00 and total_withdrawals 40.00", acct)
	}

	var reloaded models.Withdrawal
	f.db.First(&reloaded, wd.ID)
	if reloaded.Status != "Success" {
		t.Fatalf("withdrawal status = %s, want Success", reloaded.Status)
	}
}

func TestCompleteWithdrawalFailureLeavesRequestRetryable(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "871111111", nil, nil)
	if _, err := f.ledger.Credit(user.ID, 100.00, CategoryTasks, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}
	wd := models.Withdrawal{
		UserID:      user.ID,
		Amount:      40.00,
		FinalAmount: 40.00,
		OrderID:     "VB-WD-3",
		Status:      "Pending",
	}
	if err := f.db.Create(&wd).Error; err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}

	// Simulate a transient storage failure that hits only withdrawal writes.
	const cbName = "test:fail_withdrawal_updates"
	if err := f.db.Callback().Update().Before("gorm:update").Register(cbName, func(db *gorm.DB) {
		if db.Statement.Table == "withdrawals" {
			db.AddError(errors.New("connection reset"))
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := f.settlement.CompleteWithdrawal(wd.ID); err == nil {
		t.Fatal("completion succeeded while withdrawal writes were failing")
	}

	// The failed attempt must leave both sides untouched: no debit, still Pending.
	if acct := f.reloadAccount(t, user.ID); acct.Balance != 100.00 || acct.TotalWithdrawals != 0 {
		t.Fatalf("account touched by failed completion: %+v", acct)
	}
	var reloaded models.Withdrawal
	f.db.First(&reloaded, wd.ID)
	if reloaded.Status != "Pending" {
		t.Fatalf("status = %s, want still Pending after failed completion", reloaded.Status)
	}

	if err := f.db.Callback().Update().Remove(cbName); err != nil {
		t.Fatalf("remove callback: %v", err)
	}

	// The storage recovers; the retry settles the request exactly once.
	acct, err := f.settlement.CompleteWithdrawal(wd.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if acct.Balance != 60.00 || acct.TotalWithdrawals != 40.00 {
		t.Fatalf("account = %+v, want a single 40.00 debit", acct)
	}
	var journalCount int64
	f.db.Model(&models.Transaction{}).
		Where("user_id = ? AND transaction_type = ?", user.ID, "withdrawal").Count(&journalCount)
	if journalCount != 1 {
		t.Fatalf("%d withdrawal journal rows, want 1", journalCount)
	}
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	f := newFixture(t)
	user, task, sub := f.seedApprovable(t, 2.00, 10)

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.settlement.ApproveSubmission(sub.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var approved int
	for err := range errs {
		if err == nil {
			approved++
		} else if !errors.Is(err, ErrSubmissionResolved) {
			t.Errorf("unexpected approval error: %v", err)
		}
	}
	if approved != 1 {
		t.Fatalf("%d approvals succeeded, want exactly 1", approved)
	}
	if acct := f.reloadAccount(t, user.ID); acct.Balance != 2.00 {
		t.Fatalf("balance = %.2f, want a single 2.00 credit", acct.Balance)
	}
	if got := f.reloadTask(t, task.ID).CompletionCount; got != 1 {
		t.Fatalf("completion_count = %d, want 1", got)
	}
}

func TestCompleteWithdrawalInsufficientBalanceMarksFailed(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "869999999", nil, nil)
	if _, err := f.ledger.Credit(user.ID, 10.00, CategoryTasks, "seed"); err != nil {
		t.Fatalf("seed credit: %v", err)
	}
	wd := models.Withdrawal{
		UserID:      user.ID,
		Amount:      25.00,
		FinalAmount: 25.00,
		OrderID:     "VB-WD-2",
		Status:      "Pending",
	}
	if err := f.db.Create(&wd).Error; err != nil {
		t.Fatalf("seed withdrawal: %v", err)
	}

	_, err := f.settlement.CompleteWithdrawal(wd.ID)
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientBalanceError", err)
	}

	var reloaded models.Withdrawal
	f.db.First(&reloaded, wd.ID)
	if reloaded.Status != "Failed" {
		t.Fatalf("withdrawal status = %s, want Failed", reloaded.Status)
	}
	if acct := f.reloadAccount(t, user.ID); acct.Balance != 10.00 {
		t.Fatalf("balance = %.2f, want untouched 10.00", acct.Balance)
	}
}
