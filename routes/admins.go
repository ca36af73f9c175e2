package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Edna112/viral-boast-smm-sub000/controllers/admins"
	"github.com/Edna112/viral-boast-smm-sub000/middleware"
)

func registerAdminRoutes(api *mux.Router) {
	a := api.PathPrefix("/admins").Subrouter()
	a.Use(middleware.AuthMiddleware, middleware.AdminMiddleware)

	a.HandleFunc("/submissions", admins.PendingSubmissionsHandler).Methods(http.MethodGet)
	a.HandleFunc("/submissions/{id:[0-9]+}/approve", admins.ApproveSubmissionHandler).Methods(http.MethodPost)
	a.HandleFunc("/submissions/{id:[0-9]+}/reject", admins.RejectSubmissionHandler).Methods(http.MethodPost)

	a.HandleFunc("/withdrawals/{id:[0-9]+}/approve", admins.ApproveWithdrawalHandler).Methods(http.MethodPost)
	a.HandleFunc("/withdrawals/{id:[0-9]+}/reject", admins.RejectWithdrawalHandler).Methods(http.MethodPost)

	a.HandleFunc("/payments/{id:[0-9]+}/approve", admins.ApprovePaymentHandler).Methods(http.MethodPost)

	a.HandleFunc("/tasks", admins.TaskListHandler).Methods(http.MethodGet)
	a.HandleFunc("/tasks", admins.CreateTaskHandler).Methods(http.MethodPost)
	a.HandleFunc("/tasks/{id:[0-9]+}", admins.UpdateTaskHandler).Methods(http.MethodPut)
	a.HandleFunc("/tasks/{id:[0-9]+}/reset-counters", admins.ResetTaskCountersHandler).Methods(http.MethodPost)

	a.HandleFunc("/archive/run", admins.RunArchivalHandler).Methods(http.MethodPost)
}
