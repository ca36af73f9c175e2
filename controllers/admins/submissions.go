package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/services"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GET /api/admins/submissions
func PendingSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	var subs []models.TaskSubmission
	if err := database.DB.Where("status = ?", models.SubmissionPending).
		Order("id ASC").Limit(200).Find(&subs).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: subs})
}

// POST /api/admins/submissions/{id}/approve
func ApproveSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	acct, err := settlement.ApproveSubmission(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Submission not found")
			return
		}
		if errors.Is(err, services.ErrSubmissionResolved) {
			utils.WriteError(w, http.StatusBadRequest, "Submission already resolved")
			return
		}
		var notCreditable *services.TaskNotCreditableError
		if errors.As(err, &notCreditable) {
			utils.WriteError(w, http.StatusConflict, "Task completion threshold reached, no credit issued")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Approval failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Submission approved and reward credited",
		Data:    acct,
	})
}

// POST /api/admins/submissions/{id}/reject
func RejectSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := settlement.RejectSubmission(id, body.Reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Submission not found")
			return
		}
		if errors.Is(err, services.ErrSubmissionResolved) {
			utils.WriteError(w, http.StatusBadRequest, "Submission already resolved")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Rejection failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Submission rejected"})
}

// POST /api/admins/archive/run
// Manual trigger for the daily sweep; still gated by the day marker.
func RunArchivalHandler(w http.ResponseWriter, r *http.Request) {
	result, err := archiver.RunArchivalSweepIfNeeded(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Archival sweep failed")
		return
	}
	errMsgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errMsgs = append(errMsgs, e.Error())
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"archived_count": result.ArchivedCount,
			"errors":         errMsgs,
		},
	})
}
