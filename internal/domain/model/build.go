package model

import (
	"regexp"
	"strings"
	"time"
)

// GeneratedToolTitlePrefix is the fixed title prefix of automated tool PRs.
// A PR qualifies for the recent-builds feed only if both its title carries
// this prefix and its branch follows the generation naming convention;
// either one alone is a false-positive risk.
const GeneratedToolTitlePrefix = "feat: Add AI Generated Tool - "

// generatedBranchPattern matches "feat/gen-<directive>" with an optional
// trailing numeric retry suffix, capturing the directive. The directive is
// matched non-greedily so a bare numeric tail is read as the retry suffix,
// while embedded numeric segments ("word-2-pdf") stay part of the directive.
var generatedBranchPattern = regexp.MustCompile(`^feat/gen-([a-z0-9]+(?:-[a-z0-9]+)*?)(?:-\d+)?$`)

// RecentBuildEntry is one row of the recent-builds feed.
type RecentBuildEntry struct {
	PRNumber      int
	Title         string
	BranchName    string
	ToolDirective string
	Status        PRStatus  // PRStatusOpen or PRStatusMerged only.
	Timestamp     time.Time // CreatedAt for open entries, MergedAt for merged.
}

// ParseToolDirective derives the tool directive from a branch name following
// the "feat/gen-<directive>[-<numeric-suffix>]" convention. The second return
// is false when the branch does not follow the convention.
func ParseToolDirective(branch string) (string, bool) {
	m := generatedBranchPattern.FindStringSubmatch(branch)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// QualifiesAsGeneratedTool reports whether a PR belongs to the automated
// tool pipeline: conventional branch name and the fixed title prefix.
func (pr PullRequest) QualifiesAsGeneratedTool() bool {
	if !strings.HasPrefix(pr.Title, GeneratedToolTitlePrefix) {
		return false
	}
	_, ok := ParseToolDirective(pr.Branch)
	return ok
}
