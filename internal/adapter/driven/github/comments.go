package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// ListIssueComments retrieves all PR-level comments, newest first. It
// handles pagination automatically so feedback extraction sees the full
// discussion.
func (c *Client) ListIssueComments(ctx context.Context, prNumber int) ([]model.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		Sort:        gh.Ptr("created"),
		Direction:   gh.Ptr("desc"),
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allComments []model.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("listing comments for %s/%s#%d", c.owner, c.repo, prNumber), resp, err)
		}

		logRateLimit(resp, "issue-comments", opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, mapIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateIssueComment posts a PR-level comment and returns it as stored by
// GitHub, including the server-assigned ID and author.
func (c *Client) CreateIssueComment(ctx context.Context, prNumber int, body string) (*model.IssueComment, error) {
	comment, resp, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, prNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("creating comment on %s/%s#%d", c.owner, c.repo, prNumber), resp, err)
	}

	mapped := mapIssueComment(comment)
	return &mapped, nil
}

// mapIssueComment converts a go-github IssueComment to a domain model
// IssueComment.
func mapIssueComment(comment *gh.IssueComment) model.IssueComment {
	return model.IssueComment{
		ID:        comment.GetID(),
		Author:    comment.GetUser().GetLogin(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}
