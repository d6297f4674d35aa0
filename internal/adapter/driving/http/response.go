package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RepairRequest is the JSON body for the lint repair endpoint. Field names
// follow the frontend's contract.
type RepairRequest struct {
	FilesToFix []RepairFileRequest `json:"filesToFix"`
	LintErrors string              `json:"lintErrors"`
	ModelName  string              `json:"modelName,omitempty"`
}

// RepairFileRequest is one file in a repair batch.
type RepairFileRequest struct {
	Path           string `json:"path"`
	CurrentContent string `json:"currentContent"`
}

// RepairResponse maps each submitted path to its corrected content, or null
// when repair failed for that file.
type RepairResponse struct {
	Results map[string]*string `json:"results"`
	Message string             `json:"message"`
	Success bool               `json:"success"`
}

// PRResponse is the PR metadata block of the CI summary.
type PRResponse struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Status     string `json:"status"`
	IsDraft    bool   `json:"is_draft"`
	URL        string `json:"url"`
	Branch     string `json:"branch"`
	BaseBranch string `json:"base_branch"`
	HeadSHA    string `json:"head_sha"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// WorkflowRunResponse is one workflow run with its jobs and artifacts.
type WorkflowRunResponse struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	WorkflowFile string             `json:"workflow_file"`
	Status       string             `json:"status"`
	Conclusion   string             `json:"conclusion"`
	URL          string             `json:"url"`
	CreatedAt    string             `json:"created_at"`
	Jobs         []JobResponse      `json:"jobs"`
	Artifacts    []ArtifactResponse `json:"artifacts"`
}

// JobResponse is one job within a workflow run.
type JobResponse struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Conclusion string         `json:"conclusion"`
	Steps      []StepResponse `json:"steps"`
}

// StepResponse is one step within a job.
type StepResponse struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// ArtifactResponse is one artifact produced by a workflow run.
type ArtifactResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Expired   bool   `json:"expired"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CheckSuiteResponse is a non-workflow check suite (deploy preview).
type CheckSuiteResponse struct {
	ID         int64  `json:"id"`
	AppSlug    string `json:"app_slug"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// TimelineCommentResponse is a recent PR comment in the CI summary.
type TimelineCommentResponse struct {
	ID                 int64  `json:"id"`
	Author             string `json:"author"`
	AutomationIdentity string `json:"automation_identity,omitempty"`
	Body               string `json:"body"`
	CreatedAt          string `json:"created_at"`
}

// CISummaryResponse is the full CI summary for one PR.
type CISummaryResponse struct {
	PR          PRResponse                       `json:"pr"`
	Runs        map[string][]WorkflowRunResponse `json:"runs"`
	CheckSuites []CheckSuiteResponse             `json:"check_suites"`
	Comments    []TimelineCommentResponse        `json:"comments"`
}

// FeedbackCommentResponse is one feedback-shaped PR comment. The
// isOetFormattedFeedback field name is part of the frontend contract.
type FeedbackCommentResponse struct {
	ID                     int64  `json:"id"`
	Author                 string `json:"author"`
	IsAppAuthor            bool   `json:"is_app_author"`
	Emoji                  string `json:"emoji"`
	Text                   string `json:"text"`
	CreatedAt              string `json:"created_at"`
	IsOetFormattedFeedback bool   `json:"isOetFormattedFeedback"`
}

// PostFeedbackRequest is the JSON body for posting feedback.
type PostFeedbackRequest struct {
	PRNumber    int    `json:"prNumber"`
	Emoji       string `json:"emoji,omitempty"`
	CommentText string `json:"commentText"`
}

// RecentBuildResponse is one entry of the recent-builds feed.
type RecentBuildResponse struct {
	PRNumber      int    `json:"pr_number"`
	Title         string `json:"title"`
	BranchName    string `json:"branch_name"`
	ToolDirective string `json:"tool_directive"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
}

// RecentBuildsResponse is the feed envelope. The feed never errors into an
// empty-success mismatch: on internal failure it still carries an empty
// builds list alongside the error field.
type RecentBuildsResponse struct {
	Builds []RecentBuildResponse `json:"builds"`
	Error  string                `json:"error,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toCISummaryResponse converts a domain CISummary to its JSON representation.
func toCISummaryResponse(s *model.CISummary) CISummaryResponse {
	runs := make(map[string][]WorkflowRunResponse, len(s.Runs))
	for category, categoryRuns := range s.Runs {
		mapped := make([]WorkflowRunResponse, 0, len(categoryRuns))
		for _, run := range categoryRuns {
			mapped = append(mapped, toWorkflowRunResponse(run))
		}
		runs[string(category)] = mapped
	}

	suites := make([]CheckSuiteResponse, 0, len(s.CheckSuites))
	for _, suite := range s.CheckSuites {
		suites = append(suites, CheckSuiteResponse{
			ID:         suite.ID,
			AppSlug:    suite.AppSlug,
			Status:     suite.Status,
			Conclusion: suite.Conclusion,
		})
	}

	comments := make([]TimelineCommentResponse, 0, len(s.Comments))
	for _, c := range s.Comments {
		comments = append(comments, TimelineCommentResponse{
			ID:                 c.ID,
			Author:             c.Author,
			AutomationIdentity: c.AutomationIdentity,
			Body:               c.Body,
			CreatedAt:          c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return CISummaryResponse{
		PR: PRResponse{
			Number:     s.PR.Number,
			Title:      s.PR.Title,
			Author:     s.PR.Author,
			Status:     string(s.PR.Status),
			IsDraft:    s.PR.IsDraft,
			URL:        s.PR.URL,
			Branch:     s.PR.Branch,
			BaseBranch: s.PR.BaseBranch,
			HeadSHA:    s.PR.HeadSHA,
			CreatedAt:  s.PR.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  s.PR.UpdatedAt.UTC().Format(time.RFC3339),
		},
		Runs:        runs,
		CheckSuites: suites,
		Comments:    comments,
	}
}

// toWorkflowRunResponse converts one domain WorkflowRun to its JSON representation.
func toWorkflowRunResponse(run model.WorkflowRun) WorkflowRunResponse {
	jobs := make([]JobResponse, 0, len(run.Jobs))
	for _, job := range run.Jobs {
		steps := make([]StepResponse, 0, len(job.Steps))
		for _, step := range job.Steps {
			steps = append(steps, StepResponse(step))
		}
		jobs = append(jobs, JobResponse{
			ID:         job.ID,
			Name:       job.Name,
			Status:     job.Status,
			Conclusion: job.Conclusion,
			Steps:      steps,
		})
	}

	artifacts := make([]ArtifactResponse, 0, len(run.Artifacts))
	for _, artifact := range run.Artifacts {
		expiresAt := ""
		if !artifact.ExpiresAt.IsZero() {
			expiresAt = artifact.ExpiresAt.UTC().Format(time.RFC3339)
		}
		artifacts = append(artifacts, ArtifactResponse{
			ID:        artifact.ID,
			Name:      artifact.Name,
			SizeBytes: artifact.SizeBytes,
			Expired:   artifact.Expired,
			ExpiresAt: expiresAt,
		})
	}

	return WorkflowRunResponse{
		ID:           run.ID,
		Name:         run.Name,
		WorkflowFile: run.WorkflowFile,
		Status:       run.Status,
		Conclusion:   run.Conclusion,
		URL:          run.URL,
		CreatedAt:    run.CreatedAt.UTC().Format(time.RFC3339),
		Jobs:         jobs,
		Artifacts:    artifacts,
	}
}

// toFeedbackCommentResponse converts a domain FeedbackComment to its JSON
// representation.
func toFeedbackCommentResponse(c model.FeedbackComment) FeedbackCommentResponse {
	return FeedbackCommentResponse{
		ID:                     c.ID,
		Author:                 c.AuthorLogin,
		IsAppAuthor:            c.IsAppAuthor,
		Emoji:                  c.Emoji,
		Text:                   c.Text,
		CreatedAt:              c.CreatedAt.UTC().Format(time.RFC3339),
		IsOetFormattedFeedback: true,
	}
}

// toRecentBuildResponse converts a domain RecentBuildEntry to its JSON
// representation.
func toRecentBuildResponse(e model.RecentBuildEntry) RecentBuildResponse {
	return RecentBuildResponse{
		PRNumber:      e.PRNumber,
		Title:         e.Title,
		BranchName:    e.BranchName,
		ToolDirective: e.ToolDirective,
		Status:        string(e.Status),
		Timestamp:     e.Timestamp.UTC().Format(time.RFC3339),
	}
}
