package users

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/services"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

// GET /api/users/tasks
// First call of the day hands out a fresh batch; later calls replay it.
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := distributor.RequestDailyTasks(r.Context(), uid)
	if err != nil {
		var noTier *services.NoMembershipError
		if errors.As(err, &noTier) {
			utils.WriteError(w, http.StatusForbidden, "An active membership is required to receive tasks")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"assignments":       result.Assignments,
			"is_new_assignment": result.IsNewAssignment,
		},
	})
}

// POST /api/users/tasks/submit
// Multipart form: assignment_id plus a "proof" screenshot.
func TaskSubmitHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	var assignmentID uint
	if _, err := fmt.Sscanf(r.FormValue("assignment_id"), "%d", &assignmentID); err != nil || assignmentID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	db := database.DB
	var assignment models.TaskAssignment
	if err := db.Where("id = ? AND user_id = ?", assignmentID, uid).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Assignment not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}
	if assignment.Status != models.AssignmentPending {
		utils.WriteError(w, http.StatusBadRequest, "Task is no longer open for submission")
		return
	}

	var existing models.TaskSubmission
	if err := db.Where("assignment_id = ?", assignment.ID).First(&existing).Error; err == nil {
		utils.WriteError(w, http.StatusBadRequest, "Proof already submitted for this task")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Proof screenshot is required")
		return
	}
	defer file.Close()

	reference := utils.GenerateSubmissionReference()
	objectName := fmt.Sprintf("proofs/%d/%s%s", uid, reference, path.Ext(header.Filename))
	proofURL, err := utils.UploadProof(objectName, file, 7*24*time.Hour)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to store proof, please try again")
		return
	}

	note := r.FormValue("note")
	submission := models.TaskSubmission{
		Reference:    reference,
		UserID:       uid,
		TaskID:       assignment.TaskID,
		AssignmentID: assignment.ID,
		ProofURL:     proofURL,
		Status:       models.SubmissionPending,
		SubmittedAt:  time.Now(),
	}
	if note != "" {
		submission.Note = &note
	}
	if err := db.Create(&submission).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong, please try again")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Submission received and queued for review",
		Data:    map[string]interface{}{"reference": submission.Reference},
	})
}
