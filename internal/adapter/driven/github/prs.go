package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// GetPullRequest fetches a single pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("fetching PR %s/%s#%d", c.owner, c.repo, number), resp, err)
	}

	logRateLimit(resp, "pr-detail", 0, 1)

	mapped := mapPullRequest(pr)
	return &mapped, nil
}

// ListPullRequests fetches one capped page of pull requests, sorted by the
// given key in descending order. Pagination is deliberately not followed:
// callers that use this for feeds want a bounded window, not the full
// history.
func (c *Client) ListPullRequests(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       state,
		Sort:        sortBy,
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("listing %s PRs for %s/%s", state, c.owner, c.repo), resp, err)
	}

	logRateLimit(resp, "pr-list", 0, len(prs))

	mapped := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		mapped = append(mapped, mapPullRequest(pr))
	}

	return mapped, nil
}

// mapPullRequest converts a go-github PullRequest to a domain model
// PullRequest. It uses GetXxx() helper methods exclusively to avoid nil
// pointer panics.
func mapPullRequest(pr *gh.PullRequest) model.PullRequest {
	status := model.PRStatusOpen
	merged := !pr.GetMergedAt().Time.IsZero()
	if merged {
		status = model.PRStatusMerged
	} else if pr.GetState() == "closed" {
		status = model.PRStatusClosed
	}

	return model.PullRequest{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Author:     pr.GetUser().GetLogin(),
		Status:     status,
		IsDraft:    pr.GetDraft(),
		URL:        pr.GetHTMLURL(),
		Branch:     pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		HeadSHA:    pr.GetHead().GetSHA(),
		Merged:     merged,
		CreatedAt:  pr.GetCreatedAt().Time,
		UpdatedAt:  pr.GetUpdatedAt().Time,
		MergedAt:   pr.GetMergedAt().Time,
	}
}
