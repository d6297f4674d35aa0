package model

import (
	"sort"
	"strings"
	"time"
)

// TimelineComment is a recent PR comment in the CI summary, tagged with the
// automation identity that authored it (empty for human comments).
type TimelineComment struct {
	ID                 int64
	Author             string
	AutomationIdentity string
	Body               string
	CreatedAt          time.Time
}

// CISummary is the aggregated CI picture for one pull request: workflow runs
// bucketed by pipeline stage, sibling check suites, and recent comments.
type CISummary struct {
	PR          PullRequest
	Runs        map[RunCategory][]WorkflowRun
	CheckSuites []CheckSuite
	Comments    []TimelineComment
}

// SortRunsNewestFirst orders every category's runs by creation time,
// newest first.
func (s *CISummary) SortRunsNewestFirst() {
	for _, runs := range s.Runs {
		sort.Slice(runs, func(i, j int) bool {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		})
	}
}

// TagAutomationIdentity returns the first identity in known whose login
// matches author case-insensitively, or "" when the author is not a known
// automation account.
func TagAutomationIdentity(author string, known []string) string {
	for _, id := range known {
		if strings.EqualFold(author, id) {
			return id
		}
	}
	return ""
}
