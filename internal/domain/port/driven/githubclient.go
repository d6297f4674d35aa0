package driven

import (
	"context"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// GitHubClient defines the driven port for the catalog repository's GitHub
// API surface. All methods operate on the single repository the app is
// installed into; errors are *model.UpstreamError.
type GitHubClient interface {
	// GetPullRequest fetches one PR. NotFound is fatal for callers that
	// need the PR to establish identity.
	GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error)
	// ListPullRequests fetches a single capped page of PRs. state is
	// "open", "closed", or "all"; sortBy is "created" or "updated",
	// descending.
	ListPullRequests(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error)

	// ListWorkflowRunsByBranch returns runs whose head branch matches.
	ListWorkflowRunsByBranch(ctx context.Context, branch string) ([]model.WorkflowRun, error)
	// ListWorkflowRunsByHeadSHA returns runs for an exact head commit.
	ListWorkflowRunsByHeadSHA(ctx context.Context, sha string) ([]model.WorkflowRun, error)
	// ListWorkflowJobs returns a run's jobs including their steps.
	ListWorkflowJobs(ctx context.Context, runID int64) ([]model.Job, error)
	// ListWorkflowArtifacts returns a run's artifacts.
	ListWorkflowArtifacts(ctx context.Context, runID int64) ([]model.Artifact, error)
	// ListCheckSuites returns all check suites on a ref, including ones
	// owned by non-workflow apps such as deploy-preview providers.
	ListCheckSuites(ctx context.Context, ref string) ([]model.CheckSuite, error)

	// ListIssueComments returns a PR's discussion comments, newest first.
	ListIssueComments(ctx context.Context, prNumber int) ([]model.IssueComment, error)
	// CreateIssueComment posts a PR-level comment and returns it as stored.
	CreateIssueComment(ctx context.Context, prNumber int, body string) (*model.IssueComment, error)
}
