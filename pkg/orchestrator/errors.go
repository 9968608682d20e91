package orchestrator

import "errors"

// Error taxonomy for the audit pipeline. Stages wrap these sentinels so
// callers can distinguish recoverable degradation from fatal failures.
var (
	// ErrExternalCall marks a network or timeout failure on an injected
	// capability (fetch, search, LLM).
	ErrExternalCall = errors.New("external call failed")

	// ErrInvalidAgentOutput marks LLM text that violates the expected schema
	// after repair attempts.
	ErrInvalidAgentOutput = errors.New("invalid agent output")

	// ErrAggregationInput marks a run with no valid page summaries. No
	// report is possible; this is fatal.
	ErrAggregationInput = errors.New("no valid page audits available")

	// ErrTargetUnavailable marks a run whose primary target page could not
	// be audited, even when secondary pages succeeded. A report built only
	// from secondary pages would misrepresent the site; this is fatal.
	ErrTargetUnavailable = errors.New("target page audit unavailable")
)
