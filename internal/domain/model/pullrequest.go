package model

import "time"

// PullRequest represents a GitHub pull request on the catalog repository.
type PullRequest struct {
	Number     int
	Title      string
	Author     string
	Status     PRStatus
	IsDraft    bool
	URL        string
	Branch     string
	BaseBranch string
	HeadSHA    string // Current head commit SHA; anchor for workflow run matching.
	Merged     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	MergedAt   time.Time // Zero unless Merged.
}

// IssueComment is a PR-level discussion comment (from the Issues API).
type IssueComment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
}
