package admins

import "github.com/Edna112/viral-boast-smm-sub000/services"

var (
	settlement *services.Settlement
	archiver   *services.SubmissionArchiver
)

// Setup wires the admin handlers to their services. Called once from main.
func Setup(s *services.Settlement, a *services.SubmissionArchiver) {
	settlement = s
	archiver = a
}
