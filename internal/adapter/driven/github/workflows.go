package github

import (
	"context"
	"fmt"
	"path"

	gh "github.com/google/go-github/v82/github"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// workflowFileBase reduces a workflow path like ".github/workflows/ci.yml"
// to its stable basename.
func workflowFileBase(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// listWorkflowRunsPage bounds the candidate-run window per strategy. Runs
// older than this are not interesting for a live CI summary.
const listWorkflowRunsPage = 30

// ListWorkflowRunsByBranch returns recent workflow runs whose head branch
// matches. One page only; candidates are unioned with head-SHA matches by
// the caller.
func (c *Client) ListWorkflowRunsByBranch(ctx context.Context, branch string) ([]model.WorkflowRun, error) {
	return c.listWorkflowRuns(ctx, &gh.ListWorkflowRunsOptions{
		Branch:      branch,
		ListOptions: gh.ListOptions{PerPage: listWorkflowRunsPage},
	}, "workflow-runs-branch")
}

// ListWorkflowRunsByHeadSHA returns recent workflow runs for an exact head
// commit. This is the fallback linkage for runs whose PR association has not
// been populated by GitHub yet.
func (c *Client) ListWorkflowRunsByHeadSHA(ctx context.Context, sha string) ([]model.WorkflowRun, error) {
	return c.listWorkflowRuns(ctx, &gh.ListWorkflowRunsOptions{
		HeadSHA:     sha,
		ListOptions: gh.ListOptions{PerPage: listWorkflowRunsPage},
	}, "workflow-runs-sha")
}

func (c *Client) listWorkflowRuns(ctx context.Context, opts *gh.ListWorkflowRunsOptions, endpoint string) ([]model.WorkflowRun, error) {
	runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("listing workflow runs for %s/%s", c.owner, c.repo), resp, err)
	}

	logRateLimit(resp, endpoint, 0, len(runs.WorkflowRuns))

	mapped := make([]model.WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		mapped = append(mapped, mapWorkflowRun(run))
	}

	return mapped, nil
}

// ListWorkflowJobs returns all jobs (with steps) for a workflow run.
func (c *Client) ListWorkflowJobs(ctx context.Context, runID int64) ([]model.Job, error) {
	opts := &gh.ListWorkflowJobsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allJobs []model.Job

	for {
		jobs, resp, err := c.gh.Actions.ListWorkflowJobs(ctx, c.owner, c.repo, runID, opts)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("listing jobs for run %d", runID), resp, err)
		}

		for _, job := range jobs.Jobs {
			allJobs = append(allJobs, mapJob(job))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allJobs, nil
}

// ListWorkflowArtifacts returns all artifacts produced by a workflow run.
func (c *Client) ListWorkflowArtifacts(ctx context.Context, runID int64) ([]model.Artifact, error) {
	opts := &gh.ListOptions{PerPage: 100}

	var allArtifacts []model.Artifact

	for {
		artifacts, resp, err := c.gh.Actions.ListWorkflowRunArtifacts(ctx, c.owner, c.repo, runID, opts)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("listing artifacts for run %d", runID), resp, err)
		}

		for _, artifact := range artifacts.Artifacts {
			allArtifacts = append(allArtifacts, mapArtifact(artifact))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allArtifacts, nil
}

// ListCheckSuites returns all check suites on a ref. The caller filters by
// app slug to isolate deploy-preview providers.
func (c *Client) ListCheckSuites(ctx context.Context, ref string) ([]model.CheckSuite, error) {
	opts := &gh.ListCheckSuiteOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	suites, resp, err := c.gh.Checks.ListCheckSuitesForRef(ctx, c.owner, c.repo, ref, opts)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("listing check suites for %s@%s", c.repo, ref), resp, err)
	}

	logRateLimit(resp, "check-suites", 0, len(suites.CheckSuites))

	mapped := make([]model.CheckSuite, 0, len(suites.CheckSuites))
	for _, suite := range suites.CheckSuites {
		mapped = append(mapped, model.CheckSuite{
			ID:         suite.GetID(),
			AppSlug:    suite.GetApp().GetSlug(),
			Status:     suite.GetStatus(),
			Conclusion: suite.GetConclusion(),
			HeadSHA:    suite.GetHeadSHA(),
		})
	}

	return mapped, nil
}

// mapWorkflowRun converts a go-github WorkflowRun to a domain model
// WorkflowRun. Jobs and artifacts are fetched separately; the run's category
// is resolved from its defining workflow file, never the display name.
func mapWorkflowRun(run *gh.WorkflowRun) model.WorkflowRun {
	prNumbers := make([]int, 0, len(run.PullRequests))
	for _, pr := range run.PullRequests {
		prNumbers = append(prNumbers, pr.GetNumber())
	}

	return model.WorkflowRun{
		ID:           run.GetID(),
		Name:         run.GetName(),
		WorkflowFile: workflowFileBase(run.GetPath()),
		Status:       run.GetStatus(),
		Conclusion:   run.GetConclusion(),
		HeadSHA:      run.GetHeadSHA(),
		HeadBranch:   run.GetHeadBranch(),
		Category:     model.CategorizeWorkflowFile(run.GetPath()),
		URL:          run.GetHTMLURL(),
		CreatedAt:    run.GetCreatedAt().Time,
		PRNumbers:    prNumbers,
	}
}

// mapJob converts a go-github WorkflowJob to a domain model Job.
func mapJob(job *gh.WorkflowJob) model.Job {
	steps := make([]model.Step, 0, len(job.Steps))
	for _, step := range job.Steps {
		steps = append(steps, model.Step{
			Name:       step.GetName(),
			Status:     step.GetStatus(),
			Conclusion: step.GetConclusion(),
		})
	}

	return model.Job{
		ID:         job.GetID(),
		Name:       job.GetName(),
		Status:     job.GetStatus(),
		Conclusion: job.GetConclusion(),
		Steps:      steps,
	}
}

// mapArtifact converts a go-github Artifact to a domain model Artifact.
func mapArtifact(artifact *gh.Artifact) model.Artifact {
	return model.Artifact{
		ID:        artifact.GetID(),
		Name:      artifact.GetName(),
		SizeBytes: artifact.GetSizeInBytes(),
		Expired:   artifact.GetExpired(),
		ExpiresAt: artifact.GetExpiresAt().Time,
	}
}
