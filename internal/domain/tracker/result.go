package tracker

import "github.com/rpggio/interntrack/internal/domain/internship"

// Outcomes reported to the Observer.
const (
	OutcomeOK              = "ok"
	OutcomeNoOp            = "noop"
	OutcomeInvalid         = "invalid_transition"
	OutcomeNotFound        = "not_found"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeFailed          = "store_failure"
	OutcomeIncomplete      = "incomplete"
)

// Result describes what an action did, whether it succeeded or not. Callers
// redraw from the cache when Invalidated is set.
type Result struct {
	Action   internship.Action `json:"action"`
	RecordID int64             `json:"record_id"`
	// Status is the record's status after the action. It is empty when the
	// record could not be found.
	Status      internship.Status `json:"status,omitempty"`
	OK          bool              `json:"ok"`
	NoOp        bool              `json:"no_op"`
	Invalidated bool              `json:"invalidated"`
	Removed     bool              `json:"removed"`
	Reason      string            `json:"reason"`
}
