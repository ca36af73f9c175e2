package users

import "github.com/Edna112/viral-boast-smm-sub000/services"

var (
	distributor *services.TaskDistributor
	ledger      *services.Ledger
)

// Setup wires the handlers to their services. Called once from main.
func Setup(d *services.TaskDistributor, l *services.Ledger) {
	distributor = d
	ledger = l
}
