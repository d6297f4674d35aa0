package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// recentCommentsLimit caps how many PR comments the summary carries.
const recentCommentsLimit = 20

// CISummaryService aggregates a PR's workflow runs, sibling check suites,
// and recent comments into one structured summary.
type CISummaryService struct {
	provider        *ClientProvider
	previewAppSlugs []string
}

// NewCISummaryService creates a CISummaryService. previewAppSlugs names the
// check-suite apps treated as deploy-preview providers.
func NewCISummaryService(provider *ClientProvider, previewAppSlugs []string) *CISummaryService {
	return &CISummaryService{
		provider:        provider,
		previewAppSlugs: previewAppSlugs,
	}
}

// Summarize builds the CI summary for one PR. Failure to resolve the PR
// itself is fatal; every other fetch degrades its own slice of the summary
// and leaves the rest intact.
func (s *CISummaryService) Summarize(ctx context.Context, prNumber int) (*model.CISummary, error) {
	session, err := s.provider.Session(ctx)
	if err != nil {
		return nil, err
	}
	client := session.Client

	pr, err := client.GetPullRequest(ctx, prNumber)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		return nil, err
	}

	runs := s.resolveCandidateRuns(ctx, client, pr)
	for i := range runs {
		s.enrichRun(ctx, client, &runs[i])
	}

	summary := &model.CISummary{
		PR:          *pr,
		Runs:        bucketByCategory(runs),
		CheckSuites: s.previewCheckSuites(ctx, client, pr.HeadSHA),
		Comments:    s.recentComments(ctx, client, session.AppLogin, prNumber),
	}
	summary.SortRunsNewestFirst()

	return summary, nil
}

// resolveCandidateRuns unions two linkage strategies: runs GitHub explicitly
// associated with the PR number, and runs matching the PR's head commit.
// Association metadata is not always populated promptly, so the head-SHA
// match is the fallback, not the primary key; ties are deduplicated by run
// identity.
func (s *CISummaryService) resolveCandidateRuns(ctx context.Context, client driven.GitHubClient, pr *model.PullRequest) []model.WorkflowRun {
	seen := make(map[int64]bool)
	var candidates []model.WorkflowRun

	branchRuns, err := client.ListWorkflowRunsByBranch(ctx, pr.Branch)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("branch run lookup failed, continuing with head-sha matches only",
			"pr", pr.Number, "branch", pr.Branch, "error", err)
	}
	for _, run := range branchRuns {
		if associatedWithPR(run, pr.Number) && !seen[run.ID] {
			seen[run.ID] = true
			candidates = append(candidates, run)
		}
	}

	shaRuns, err := client.ListWorkflowRunsByHeadSHA(ctx, pr.HeadSHA)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("head-sha run lookup failed",
			"pr", pr.Number, "head_sha", pr.HeadSHA, "error", err)
	}
	for _, run := range shaRuns {
		if !seen[run.ID] {
			seen[run.ID] = true
			candidates = append(candidates, run)
		}
	}

	return candidates
}

// enrichRun attaches jobs and artifacts to one run. A fetch failure degrades
// that run's detail but never aborts the rest of the summary.
func (s *CISummaryService) enrichRun(ctx context.Context, client driven.GitHubClient, run *model.WorkflowRun) {
	jobs, err := client.ListWorkflowJobs(ctx, run.ID)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("job fetch failed for run", "run_id", run.ID, "error", err)
	} else {
		run.Jobs = jobs
	}

	artifacts, err := client.ListWorkflowArtifacts(ctx, run.ID)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("artifact fetch failed for run", "run_id", run.ID, "error", err)
	} else {
		run.Artifacts = artifacts
	}
}

// previewCheckSuites returns the check suites owned by the configured
// deploy-preview apps. Resolution failures degrade to an empty list.
func (s *CISummaryService) previewCheckSuites(ctx context.Context, client driven.GitHubClient, headSHA string) []model.CheckSuite {
	suites, err := client.ListCheckSuites(ctx, headSHA)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("check suite fetch failed", "head_sha", headSHA, "error", err)
		return []model.CheckSuite{}
	}

	filtered := make([]model.CheckSuite, 0, len(suites))
	for _, suite := range suites {
		for _, slug := range s.previewAppSlugs {
			if strings.EqualFold(suite.AppSlug, slug) {
				filtered = append(filtered, suite)
				break
			}
		}
	}

	return filtered
}

// recentComments returns the newest PR comments, each tagged with the known
// automation identity that authored it (if any).
func (s *CISummaryService) recentComments(ctx context.Context, client driven.GitHubClient, appLogin string, prNumber int) []model.TimelineComment {
	comments, err := client.ListIssueComments(ctx, prNumber)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		slog.Warn("comment fetch failed", "pr", prNumber, "error", err)
		return []model.TimelineComment{}
	}

	known := s.knownAutomationIdentities(appLogin)
	if len(comments) > recentCommentsLimit {
		comments = comments[:recentCommentsLimit]
	}

	tagged := make([]model.TimelineComment, 0, len(comments))
	for _, c := range comments {
		tagged = append(tagged, model.TimelineComment{
			ID:                 c.ID,
			Author:             c.Author,
			AutomationIdentity: model.TagAutomationIdentity(c.Author, known),
			Body:               c.Body,
			CreatedAt:          c.CreatedAt,
		})
	}

	return tagged
}

// knownAutomationIdentities lists the logins the summary recognizes as
// automation: the app itself, the Actions bot, and the preview providers.
func (s *CISummaryService) knownAutomationIdentities(appLogin string) []string {
	known := []string{"github-actions[bot]"}
	if appLogin != "" {
		known = append(known, appLogin)
	}
	for _, slug := range s.previewAppSlugs {
		known = append(known, slug+"[bot]")
	}
	return known
}

// associatedWithPR reports whether GitHub's run metadata already links the
// run to the PR.
func associatedWithPR(run model.WorkflowRun, prNumber int) bool {
	for _, n := range run.PRNumbers {
		if n == prNumber {
			return true
		}
	}
	return false
}

// bucketByCategory groups runs into their pipeline stages. Every category
// that has runs is present; unmatched workflow files land in CategoryOther.
func bucketByCategory(runs []model.WorkflowRun) map[model.RunCategory][]model.WorkflowRun {
	buckets := make(map[model.RunCategory][]model.WorkflowRun)
	for _, run := range runs {
		buckets[run.Category] = append(buckets[run.Category], run)
	}
	return buckets
}
