package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/services"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

const (
	minTransfer float64 = 1
	maxTransfer float64 = 10000
)

// GET /api/users/wallet
func WalletHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	acct, err := ledger.GetOrCreate(uid)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: acct})
}

// GET /api/users/transactions
func TransactionListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var trxs []models.Transaction
	if err := database.DB.Where("user_id = ?", uid).Order("id DESC").Limit(100).Find(&trxs).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: trxs})
}

type transferRequest struct {
	Number string  `json:"number"`
	Amount float64 `json:"amount"`
}

// normalizeNumber strips formatting from a phone number: +62 812..., 0812...
// and 62812... all become 812...
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	s = strings.TrimPrefix(s, "0")
	s = strings.TrimPrefix(s, "62")
	return s
}

// POST /api/users/transfer
// Body: { "number": "0812241231", "amount": 50 }
func TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	normalized := normalizeNumber(req.Number)
	if normalized == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid number")
		return
	}
	if req.Amount < minTransfer || req.Amount > maxTransfer {
		utils.WriteError(w, http.StatusBadRequest, "Transfer amount out of range")
		return
	}

	var receiver models.User
	if err := database.DB.Where("number = ?", normalized).First(&receiver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Recipient not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if receiver.ID == uid {
		utils.WriteError(w, http.StatusBadRequest, "Cannot transfer to your own number")
		return
	}

	if err := ledger.Transfer(uid, receiver.ID, req.Amount, "Member transfer to "+receiver.Name); err != nil {
		var insufficient *services.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			utils.WriteError(w, http.StatusBadRequest, "Insufficient balance")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	// Remember the recipient for the contact list; not part of the money path.
	var contact models.TransferContact
	if err := database.DB.Where("sender_id = ? AND receiver_id = ?", uid, receiver.ID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			database.DB.Create(&models.TransferContact{SenderID: uid, ReceiverID: receiver.ID})
		}
	} else {
		database.DB.Model(&contact).Update("updated_at", time.Now())
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Transfer successful",
		Data: map[string]interface{}{
			"amount":    req.Amount,
			"recipient": receiver.Name,
			"number":    receiver.Number,
		},
	})
}

// GET /api/users/transfer/contacts
func TransferContactHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var contacts []models.TransferContact
	if err := database.DB.Where("sender_id = ?", uid).Order("updated_at DESC").Find(&contacts).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if len(contacts) == 0 {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: []interface{}{}})
		return
	}

	receiverIDs := make([]uint, 0, len(contacts))
	seen := make(map[uint]struct{})
	for _, c := range contacts {
		if _, ok := seen[c.ReceiverID]; !ok {
			seen[c.ReceiverID] = struct{}{}
			receiverIDs = append(receiverIDs, c.ReceiverID)
		}
	}

	var users []models.User
	database.DB.Select("id, name, number, profile").Where("id IN ?", receiverIDs).Find(&users)
	userMap := make(map[uint]models.User)
	for _, u := range users {
		userMap[u.ID] = u
	}

	resp := make([]map[string]interface{}, 0, len(receiverIDs))
	for _, rid := range receiverIDs {
		if u, ok := userMap[rid]; ok {
			resp = append(resp, map[string]interface{}{
				"id":      u.ID,
				"name":    u.Name,
				"number":  u.Number,
				"profile": u.Profile,
			})
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: resp})
}
