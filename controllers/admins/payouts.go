package admins

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/services"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

// POST /api/admins/withdrawals/{id}/approve
// Completing a withdrawal is the moment the ledger is debited.
func ApproveWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	acct, err := settlement.CompleteWithdrawal(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Withdrawal not found")
			return
		}
		var insufficient *services.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			utils.WriteError(w, http.StatusConflict, "User balance is insufficient, withdrawal marked failed")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Completion failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal completed",
		Data:    acct,
	})
}

// POST /api/admins/withdrawals/{id}/reject
func RejectWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}
	res := database.DB.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, "Pending").
		Update("status", "Failed")
	if res.Error != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "No pending withdrawal with that id")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawal rejected"})
}

// POST /api/admins/payments/{id}/approve
func ApprovePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid payment id")
		return
	}
	acct, err := settlement.ApprovePayment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Payment not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Approval failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Payment approved and credited",
		Data:    acct,
	})
}
