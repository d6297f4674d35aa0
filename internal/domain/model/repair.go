package model

// FileFixRequest is one file submitted to the lint-repair engine. Path is
// also the matching key used to scope the lint report to this file.
type FileFixRequest struct {
	Path           string
	CurrentContent string
}

// FileFixOutcome is the terminal result for a single file in a repair batch.
// Content is populated for Unchanged and Fixed; Reason for Failed.
type FileFixOutcome struct {
	State         FixState
	Content       string
	Reason        string
	SafetyBlocked bool
}

// DeriveBatchStatus collapses per-file outcomes into the batch status.
// A batch never fails as a whole unless every file failed; partial results
// are always preferable to none.
func DeriveBatchStatus(outcomes map[string]FileFixOutcome) BatchStatus {
	var failed, fixed int
	for _, o := range outcomes {
		switch o.State {
		case FixStateFailed:
			failed++
		case FixStateFixed:
			fixed++
		}
	}

	switch {
	case len(outcomes) > 0 && failed == len(outcomes):
		return BatchAllFailed
	case failed > 0:
		return BatchPartialFailure
	case fixed == 0:
		return BatchNoChangesProposed
	default:
		return BatchSuccess
	}
}
