package constants

// OutcomeStatus is the result of one extraction strategy on one document.
type OutcomeStatus string

// Stable values (written as-is to extraction reports).
const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)
