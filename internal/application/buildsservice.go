package application

import (
	"context"
	"log/slog"
	"sort"

	"github.com/oetdev/toolforge/internal/domain/model"
)

const (
	// defaultRecentBuilds is the feed length when the caller does not ask
	// for a specific limit.
	defaultRecentBuilds = 6
	// recentBuildsWindow caps each of the two PR queries. The feed never
	// paginates; anything older than one page of either window is not
	// "recent".
	recentBuildsWindow = 30
)

// BuildsService produces the recent-builds feed: in-flight and recently
// merged automated tool PRs, deduplicated and ranked.
type BuildsService struct {
	provider *ClientProvider
}

// NewBuildsService creates a BuildsService.
func NewBuildsService(provider *ClientProvider) *BuildsService {
	return &BuildsService{provider: provider}
}

// ListRecentBuilds returns up to maxResults qualifying tool PRs, newest
// first by effective timestamp (created for open, merged for merged).
func (s *BuildsService) ListRecentBuilds(ctx context.Context, maxResults int) ([]model.RecentBuildEntry, error) {
	if maxResults <= 0 || maxResults > recentBuildsWindow {
		maxResults = defaultRecentBuilds
	}

	session, err := s.provider.Session(ctx)
	if err != nil {
		return nil, err
	}
	client := session.Client

	openPRs, err := client.ListPullRequests(ctx, "open", "created", recentBuildsWindow)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		return nil, err
	}

	closedPRs, err := client.ListPullRequests(ctx, "closed", "updated", recentBuildsWindow)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		return nil, err
	}

	seen := make(map[int]bool)
	var entries []model.RecentBuildEntry

	for _, pr := range openPRs {
		if entry, ok := buildEntry(pr); ok && !seen[pr.Number] {
			seen[pr.Number] = true
			entries = append(entries, entry)
		}
	}
	for _, pr := range closedPRs {
		if entry, ok := buildEntry(pr); ok && !seen[pr.Number] {
			seen[pr.Number] = true
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if len(entries) > maxResults {
		entries = entries[:maxResults]
	}

	slog.Debug("recent builds resolved",
		"open_window", len(openPRs),
		"closed_window", len(closedPRs),
		"qualifying", len(entries),
	)

	return entries, nil
}

// buildEntry maps a qualifying PR into a feed entry. Closed PRs qualify only
// when merged; a closed-but-unmerged PR is excluded entirely rather than
// surfaced with some third status.
func buildEntry(pr model.PullRequest) (model.RecentBuildEntry, bool) {
	if !pr.QualifiesAsGeneratedTool() {
		return model.RecentBuildEntry{}, false
	}

	directive, _ := model.ParseToolDirective(pr.Branch)

	switch pr.Status {
	case model.PRStatusOpen:
		return model.RecentBuildEntry{
			PRNumber:      pr.Number,
			Title:         pr.Title,
			BranchName:    pr.Branch,
			ToolDirective: directive,
			Status:        model.PRStatusOpen,
			Timestamp:     pr.CreatedAt,
		}, true
	case model.PRStatusMerged:
		return model.RecentBuildEntry{
			PRNumber:      pr.Number,
			Title:         pr.Title,
			BranchName:    pr.Branch,
			ToolDirective: directive,
			Status:        model.PRStatusMerged,
			Timestamp:     pr.MergedAt,
		}, true
	default:
		return model.RecentBuildEntry{}, false
	}
}
