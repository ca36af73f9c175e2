package admins

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/Edna112/viral-boast-smm-sub000/database"
	"github.com/Edna112/viral-boast-smm-sub000/models"
	"github.com/Edna112/viral-boast-smm-sub000/utils"
)

// GET /api/admins/tasks
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	var tasks []models.Task
	if err := database.DB.Order("id ASC").Find(&tasks).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

type taskUpsertRequest struct {
	Title                 string  `json:"title"`
	Description           string  `json:"description"`
	Benefit               float64 `json:"benefit"`
	TargetURL             string  `json:"target_url"`
	IsActive              *bool   `json:"is_active"`
	DistributionThreshold int64   `json:"distribution_threshold"`
	CompletionThreshold   int64   `json:"completion_threshold"`
}

// POST /api/admins/tasks
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req taskUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Benefit <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task payload")
		return
	}
	task := models.Task{
		Title:                 req.Title,
		Description:           req.Description,
		Benefit:               req.Benefit,
		TargetURL:             req.TargetURL,
		IsActive:              true,
		DistributionThreshold: req.DistributionThreshold,
		CompletionThreshold:   req.CompletionThreshold,
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	if err := database.DB.Create(&task).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// PUT /api/admins/tasks/{id}
// Threshold and activation administration; counters are left alone.
func UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	var req taskUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task payload")
		return
	}

	var task models.Task
	if err := database.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Task not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Benefit > 0 {
		updates["benefit"] = req.Benefit
	}
	if req.DistributionThreshold > 0 {
		updates["distribution_threshold"] = req.DistributionThreshold
	}
	if req.CompletionThreshold > 0 {
		updates["completion_threshold"] = req.CompletionThreshold
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}

// POST /api/admins/tasks/{id}/reset-counters
func ResetTaskCountersHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid task id")
		return
	}
	res := database.DB.Model(&models.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{"distribution_count": 0, "completion_count": 0})
	if res.Error != nil {
		utils.WriteError(w, http.StatusInternalServerError, "DB error")
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "Task not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Counters reset"})
}
