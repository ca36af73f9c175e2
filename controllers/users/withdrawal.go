package users

import (
	"encoding/json"
	"net/http"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

type withdrawalRequest struct {
	Amount float64 `json:"amount"`
}

// POST /api/users/withdrawals
// Creates a pending withdrawal request. The ledger is debited later, when an
// admin completes the request; the precheck here only rejects the obviously
// hopeless ones early.
func WithdrawalRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if setting.MinWithdraw > 0 && req.Amount < setting.MinWithdraw {
		utils.WriteError(w, http.StatusBadRequest, "Amount is below the minimum withdrawal")
		return
	}
	if setting.MaxWithdraw > 0 && req.Amount > setting.MaxWithdraw {
		utils.WriteError(w, http.StatusBadRequest, "Amount is above the maximum withdrawal")
		return
	}

	enough, err := ledger.HasSufficientBalance(uid, req.Amount)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if !enough {
		utils.WriteError(w, http.StatusBadRequest, "Insufficient balance")
		return
	}

	charge := utils.RoundFloat(setting.WithdrawCharge, 2)
	wd := models.Withdrawal{
		UserID:      uid,
		Amount:      req.Amount,
		Charge:      charge,
		FinalAmount: utils.RoundFloat(req.Amount-charge, 2),
		OrderID:     utils.GenerateOrderID(uid),
		Status:      "Pending",
	}
	if err := database.DB.Create(&wd).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal requested, pending review",
		Data:    wd,
	})
}

// GET /api/users/withdrawals
func WithdrawalListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var items []models.Withdrawal
	if err := database.DB.Where("user_id = ?", uid).Order("id DESC").Limit(50).Find(&items).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: items})
}
