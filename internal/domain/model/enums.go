package model

// PRStatus represents the state of a pull request.
type PRStatus string

const (
	PRStatusOpen   PRStatus = "open"
	PRStatusClosed PRStatus = "closed"
	PRStatusMerged PRStatus = "merged"
)

// FixState is the terminal state of a single file in a repair batch.
type FixState string

const (
	FixStateUnchanged FixState = "unchanged"
	FixStateFixed     FixState = "fixed"
	FixStateFailed    FixState = "failed"
)

// BatchStatus is the aggregate outcome of a repair batch.
type BatchStatus string

const (
	BatchSuccess           BatchStatus = "success"
	BatchPartialFailure    BatchStatus = "partial_failure"
	BatchNoChangesProposed BatchStatus = "no_changes_proposed"
	BatchAllFailed         BatchStatus = "all_failed"
)

// RunCategory is the pipeline stage a workflow run belongs to, resolved
// from the run's defining workflow file name (display names are mutable
// and never used for categorization).
type RunCategory string

const (
	CategoryGeneration RunCategory = "generation"
	CategoryLintRepair RunCategory = "lint_repair"
	CategoryValidation RunCategory = "validation"
	CategoryDeploy     RunCategory = "deploy"
	CategoryOther      RunCategory = "other"
)
