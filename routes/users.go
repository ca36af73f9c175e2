package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Edna112/viral-boast-smm-sub000/controllers/users"
	"github.com/Edna112/viral-boast-smm-sub000/middleware"
)

func registerUserRoutes(api *mux.Router) {
	u := api.PathPrefix("/users").Subrouter()
	u.Use(middleware.AuthMiddleware)

	u.HandleFunc("/tasks", users.TaskListHandler).Methods(http.MethodGet)
	u.HandleFunc("/tasks/submit", users.TaskSubmitHandler).Methods(http.MethodPost)

	u.HandleFunc("/wallet", users.WalletHandler).Methods(http.MethodGet)
	u.HandleFunc("/transactions", users.TransactionListHandler).Methods(http.MethodGet)

	u.HandleFunc("/transfer", users.TransferHandler).Methods(http.MethodPost)
	u.HandleFunc("/transfer/contacts", users.TransferContactHandler).Methods(http.MethodGet)

	u.HandleFunc("/withdrawals", users.WithdrawalRequestHandler).Methods(http.MethodPost)
	u.HandleFunc("/withdrawals", users.WithdrawalListHandler).Methods(http.MethodGet)
}
