package application_test

import (
	"context"
	"errors"
	"time"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// fakeGitHubClient implements driven.GitHubClient with per-method function
// hooks. Unset hooks return empty results.
type fakeGitHubClient struct {
	getPullRequest       func(ctx context.Context, number int) (*model.PullRequest, error)
	listPullRequests     func(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error)
	listRunsByBranch     func(ctx context.Context, branch string) ([]model.WorkflowRun, error)
	listRunsByHeadSHA    func(ctx context.Context, sha string) ([]model.WorkflowRun, error)
	listWorkflowJobs     func(ctx context.Context, runID int64) ([]model.Job, error)
	listArtifacts        func(ctx context.Context, runID int64) ([]model.Artifact, error)
	listCheckSuites      func(ctx context.Context, ref string) ([]model.CheckSuite, error)
	listIssueComments    func(ctx context.Context, prNumber int) ([]model.IssueComment, error)
	createIssueComment   func(ctx context.Context, prNumber int, body string) (*model.IssueComment, error)
}

var _ driven.GitHubClient = (*fakeGitHubClient)(nil)

func (f *fakeGitHubClient) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	if f.getPullRequest == nil {
		return nil, errors.New("GetPullRequest not stubbed")
	}
	return f.getPullRequest(ctx, number)
}

func (f *fakeGitHubClient) ListPullRequests(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error) {
	if f.listPullRequests == nil {
		return nil, nil
	}
	return f.listPullRequests(ctx, state, sortBy, perPage)
}

func (f *fakeGitHubClient) ListWorkflowRunsByBranch(ctx context.Context, branch string) ([]model.WorkflowRun, error) {
	if f.listRunsByBranch == nil {
		return nil, nil
	}
	return f.listRunsByBranch(ctx, branch)
}

func (f *fakeGitHubClient) ListWorkflowRunsByHeadSHA(ctx context.Context, sha string) ([]model.WorkflowRun, error) {
	if f.listRunsByHeadSHA == nil {
		return nil, nil
	}
	return f.listRunsByHeadSHA(ctx, sha)
}

func (f *fakeGitHubClient) ListWorkflowJobs(ctx context.Context, runID int64) ([]model.Job, error) {
	if f.listWorkflowJobs == nil {
		return nil, nil
	}
	return f.listWorkflowJobs(ctx, runID)
}

func (f *fakeGitHubClient) ListWorkflowArtifacts(ctx context.Context, runID int64) ([]model.Artifact, error) {
	if f.listArtifacts == nil {
		return nil, nil
	}
	return f.listArtifacts(ctx, runID)
}

func (f *fakeGitHubClient) ListCheckSuites(ctx context.Context, ref string) ([]model.CheckSuite, error) {
	if f.listCheckSuites == nil {
		return nil, nil
	}
	return f.listCheckSuites(ctx, ref)
}

func (f *fakeGitHubClient) ListIssueComments(ctx context.Context, prNumber int) ([]model.IssueComment, error) {
	if f.listIssueComments == nil {
		return nil, nil
	}
	return f.listIssueComments(ctx, prNumber)
}

func (f *fakeGitHubClient) CreateIssueComment(ctx context.Context, prNumber int, body string) (*model.IssueComment, error) {
	if f.createIssueComment == nil {
		return nil, errors.New("CreateIssueComment not stubbed")
	}
	return f.createIssueComment(ctx, prNumber, body)
}

// fakeBroker hands out sessions around a fake client, counting mints.
type fakeBroker struct {
	client   driven.GitHubClient
	appLogin string
	expires  time.Time
	err      error
	mints    int
}

var _ driven.SessionBroker = (*fakeBroker)(nil)

func (b *fakeBroker) Authenticate(ctx context.Context) (*driven.AuthenticatedSession, error) {
	b.mints++
	if b.err != nil {
		return nil, b.err
	}
	expires := b.expires
	if expires.IsZero() {
		expires = time.Now().Add(time.Hour)
	}
	return &driven.AuthenticatedSession{
		Client:         b.client,
		AppLogin:       b.appLogin,
		InstallationID: 12345,
		TokenExpiresAt: expires,
	}, nil
}

// fakeGenerator implements driven.Generator with a function hook.
type fakeGenerator struct {
	generate func(ctx context.Context, modelName, prompt string) (string, error)
	calls    int
}

var _ driven.Generator = (*fakeGenerator)(nil)

func (g *fakeGenerator) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	g.calls++
	if g.generate == nil {
		return "", errors.New("GenerateText not stubbed")
	}
	return g.generate(ctx, modelName, prompt)
}
