package model

import (
	"path"
	"time"
)

// WorkflowRun is one execution of a CI workflow definition.
type WorkflowRun struct {
	ID           int64
	Name         string
	WorkflowFile string // Basename of the defining workflow file, e.g. "ci.yml".
	Status       string // queued, in_progress, completed.
	Conclusion   string // success, failure, cancelled, ... (empty while running).
	HeadSHA      string
	HeadBranch   string
	Category     RunCategory
	URL          string
	CreatedAt    time.Time
	PRNumbers    []int // PR numbers GitHub associated with the run; may lag behind reality.
	Jobs         []Job
	Artifacts    []Artifact
}

// Job is one job within a workflow run.
type Job struct {
	ID         int64
	Name       string
	Status     string
	Conclusion string
	Steps      []Step
}

// Step is one step within a job.
type Step struct {
	Name       string
	Status     string
	Conclusion string
}

// Artifact is a file bundle produced by a workflow run.
type Artifact struct {
	ID        int64
	Name      string
	SizeBytes int64
	Expired   bool
	ExpiresAt time.Time
}

// CheckSuite is a non-workflow check suite on a commit, e.g. a deploy-preview
// provider. Keyed by the owning app's slug rather than by run category.
type CheckSuite struct {
	ID         int64
	AppSlug    string
	Status     string
	Conclusion string
	HeadSHA    string
}

// workflowCategories maps workflow file basenames to pipeline stages.
// Lookups go through the file name because workflow display names can be
// edited without changing the file.
var workflowCategories = map[string]RunCategory{
	"generate-tool.yml": CategoryGeneration,
	"lint-repair.yml":   CategoryLintRepair,
	"validate-tool.yml": CategoryValidation,
	"ci.yml":            CategoryValidation,
	"deploy.yml":        CategoryDeploy,
}

// CategorizeWorkflowFile resolves a workflow file path or basename to its
// pipeline stage. Unknown files map to CategoryOther, never dropped.
func CategorizeWorkflowFile(workflowPath string) RunCategory {
	if workflowPath == "" {
		return CategoryOther
	}
	if cat, ok := workflowCategories[path.Base(workflowPath)]; ok {
		return cat
	}
	return CategoryOther
}
