package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/oetdev/toolforge/internal/adapter/driving/http"
	"github.com/oetdev/toolforge/internal/application"
	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// stubGitHubClient implements driven.GitHubClient for handler tests. Only the
// hooks a test sets are exercised.
type stubGitHubClient struct {
	getPullRequest     func(ctx context.Context, number int) (*model.PullRequest, error)
	listPullRequests   func(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error)
	listIssueComments  func(ctx context.Context, prNumber int) ([]model.IssueComment, error)
	createIssueComment func(ctx context.Context, prNumber int, body string) (*model.IssueComment, error)
}

func (s *stubGitHubClient) GetPullRequest(ctx context.Context, number int) (*model.PullRequest, error) {
	return s.getPullRequest(ctx, number)
}

func (s *stubGitHubClient) ListPullRequests(ctx context.Context, state, sortBy string, perPage int) ([]model.PullRequest, error) {
	return s.listPullRequests(ctx, state, sortBy, perPage)
}

func (s *stubGitHubClient) ListWorkflowRunsByBranch(context.Context, string) ([]model.WorkflowRun, error) {
	return nil, nil
}

func (s *stubGitHubClient) ListWorkflowRunsByHeadSHA(context.Context, string) ([]model.WorkflowRun, error) {
	return nil, nil
}

func (s *stubGitHubClient) ListWorkflowJobs(context.Context, int64) ([]model.Job, error) {
	return nil, nil
}

func (s *stubGitHubClient) ListWorkflowArtifacts(context.Context, int64) ([]model.Artifact, error) {
	return nil, nil
}

func (s *stubGitHubClient) ListCheckSuites(context.Context, string) ([]model.CheckSuite, error) {
	return nil, nil
}

func (s *stubGitHubClient) ListIssueComments(ctx context.Context, prNumber int) ([]model.IssueComment, error) {
	if s.listIssueComments == nil {
		return nil, nil
	}
	return s.listIssueComments(ctx, prNumber)
}

func (s *stubGitHubClient) CreateIssueComment(ctx context.Context, prNumber int, body string) (*model.IssueComment, error) {
	return s.createIssueComment(ctx, prNumber, body)
}

// stubBroker hands out sessions around a stub client.
type stubBroker struct {
	client driven.GitHubClient
	err    error
}

func (b *stubBroker) Authenticate(context.Context) (*driven.AuthenticatedSession, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &driven.AuthenticatedSession{
		Client:         b.client,
		AppLogin:       "toolforge-app[bot]",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

// stubGenerator implements driven.Generator.
type stubGenerator struct {
	generate func(ctx context.Context, modelName, prompt string) (string, error)
}

func (g *stubGenerator) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	return g.generate(ctx, modelName, prompt)
}

type handlerDeps struct {
	client    *stubGitHubClient
	broker    *stubBroker
	generator *stubGenerator
}

// newTestRouter wires a full router around stub ports.
func newTestRouter(deps handlerDeps) http.Handler {
	if deps.client == nil {
		deps.client = &stubGitHubClient{}
	}
	if deps.broker == nil {
		deps.broker = &stubBroker{client: deps.client}
	}
	if deps.generator == nil {
		deps.generator = &stubGenerator{
			generate: func(context.Context, string, string) (string, error) {
				return "", errors.New("generator not stubbed")
			},
		}
	}

	logger := slog.New(slog.DiscardHandler)
	provider := application.NewClientProvider(deps.broker, time.Second)

	h := httphandler.NewHandler(
		application.NewRepairService(deps.generator, "gemini-2.5-flash", time.Minute, nil),
		application.NewCISummaryService(provider, []string{"netlify"}),
		application.NewFeedbackService(provider),
		application.NewBuildsService(provider),
		logger,
	)
	return httphandler.NewRouter(h, "http://localhost:3000", logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRepairLint_Success(t *testing.T) {
	router := newTestRouter(handlerDeps{
		generator: &stubGenerator{
			generate: func(_ context.Context, _, _ string) (string, error) {
				return "const x = 1;\nconsole.log(x);", nil
			},
		},
	})

	body := `{
		"filesToFix": [{"path": "app.js", "currentContent": "const x = 1;"}],
		"lintErrors": "app.js:1:7 no-unused-vars"
	}`
	rec := doJSON(t, router, http.MethodPost, "/api/v1/repair", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results map[string]*string `json:"results"`
		Message string             `json:"message"`
		Success bool               `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Results["app.js"])
	assert.Equal(t, "const x = 1;\nconsole.log(x);", *resp.Results["app.js"])
}

func TestRepairLint_PartialFailureStays200(t *testing.T) {
	router := newTestRouter(handlerDeps{
		generator: &stubGenerator{
			generate: func(_ context.Context, _, prompt string) (string, error) {
				if strings.Contains(prompt, "bad.js") {
					return "", errors.New("model unavailable")
				}
				return "fixed", nil
			},
		},
	})

	body := `{
		"filesToFix": [
			{"path": "good.js", "currentContent": "a"},
			{"path": "bad.js", "currentContent": "b"}
		],
		"lintErrors": "good.js: error\nbad.js: error"
	}`
	rec := doJSON(t, router, http.MethodPost, "/api/v1/repair", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results map[string]*string `json:"results"`
		Success bool               `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	require.Contains(t, resp.Results, "bad.js")
	assert.Nil(t, resp.Results["bad.js"], "failed file maps to null, not omitted")
	require.NotNil(t, resp.Results["good.js"])
}

func TestRepairLint_AllFailedIs500(t *testing.T) {
	router := newTestRouter(handlerDeps{
		generator: &stubGenerator{
			generate: func(context.Context, string, string) (string, error) {
				return "", errors.New("model unavailable")
			},
		},
	})

	body := `{
		"filesToFix": [
			{"path": "a.js", "currentContent": "a"},
			{"path": "b.js", "currentContent": "b"},
			{"path": "c.js", "currentContent": "c"}
		],
		"lintErrors": "a.js: e\nb.js: e\nc.js: e"
	}`
	rec := doJSON(t, router, http.MethodPost, "/api/v1/repair", body)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Results map[string]*string `json:"results"`
		Success bool               `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Len(t, resp.Results, 3)
}

func TestRepairLint_Validation(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"empty file list", `{"filesToFix": [], "lintErrors": "x"}`},
		{"file without path", `{"filesToFix": [{"path": "", "currentContent": "a"}], "lintErrors": "x"}`},
		{"blank lint errors", `{"filesToFix": [{"path": "a.js", "currentContent": "a"}], "lintErrors": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/repair", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetCISummary(t *testing.T) {
	t.Run("valid PR -> 200 with summary", func(t *testing.T) {
		client := &stubGitHubClient{
			getPullRequest: func(_ context.Context, number int) (*model.PullRequest, error) {
				return &model.PullRequest{
					Number:  number,
					Title:   model.GeneratedToolTitlePrefix + "JSON Formatter",
					Branch:  "feat/gen-json-formatter",
					HeadSHA: "abc123",
					Status:  model.PRStatusOpen,
				}, nil
			},
		}
		router := newTestRouter(handlerDeps{client: client})

		rec := doJSON(t, router, http.MethodGet, "/api/v1/prs/42/ci-summary", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			PR struct {
				Number int    `json:"number"`
				Status string `json:"status"`
			} `json:"pr"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 42, resp.PR.Number)
		assert.Equal(t, "open", resp.PR.Status)
	})

	t.Run("unknown PR -> 404", func(t *testing.T) {
		client := &stubGitHubClient{
			getPullRequest: func(context.Context, int) (*model.PullRequest, error) {
				return nil, &model.UpstreamError{Op: "github.GetPullRequest", StatusCode: 404, NotFound: true}
			},
		}
		router := newTestRouter(handlerDeps{client: client})

		rec := doJSON(t, router, http.MethodGet, "/api/v1/prs/9999/ci-summary", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric PR number -> 400", func(t *testing.T) {
		router := newTestRouter(handlerDeps{})
		rec := doJSON(t, router, http.MethodGet, "/api/v1/prs/abc/ci-summary", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure -> 500", func(t *testing.T) {
		client := &stubGitHubClient{
			getPullRequest: func(context.Context, int) (*model.PullRequest, error) {
				return nil, &model.UpstreamError{Op: "github.GetPullRequest", StatusCode: 502}
			},
		}
		router := newTestRouter(handlerDeps{client: client})

		rec := doJSON(t, router, http.MethodGet, "/api/v1/prs/42/ci-summary", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestListFeedback(t *testing.T) {
	client := &stubGitHubClient{
		listIssueComments: func(_ context.Context, prNumber int) ([]model.IssueComment, error) {
			return []model.IssueComment{
				{ID: 1, Author: "alice", Body: "User Feedback: 🐛\n\nbroken output"},
				{ID: 2, Author: "bob", Body: "plain discussion"},
			}, nil
		},
	}
	router := newTestRouter(handlerDeps{client: client})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/prs/42/feedback", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		ID                     int64  `json:"id"`
		Emoji                  string `json:"emoji"`
		Text                   string `json:"text"`
		IsOetFormattedFeedback bool   `json:"isOetFormattedFeedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp, 1, "non-feedback comments excluded")
	assert.Equal(t, int64(1), resp[0].ID)
	assert.Equal(t, "🐛", resp[0].Emoji)
	assert.Equal(t, "broken output", resp[0].Text)
	assert.True(t, resp[0].IsOetFormattedFeedback)
}

func TestPostFeedback(t *testing.T) {
	t.Run("valid feedback -> 201", func(t *testing.T) {
		client := &stubGitHubClient{
			createIssueComment: func(_ context.Context, prNumber int, body string) (*model.IssueComment, error) {
				assert.Equal(t, 42, prNumber)
				assert.Equal(t, "User Feedback: 🐛\n\nthe button is broken", body)
				return &model.IssueComment{ID: 99, Author: "toolforge-app[bot]", Body: body}, nil
			},
		}
		router := newTestRouter(handlerDeps{client: client})

		body := `{"prNumber": 42, "emoji": "🐛", "commentText": "the button is broken"}`
		rec := doJSON(t, router, http.MethodPost, "/api/v1/feedback", body)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID          int64 `json:"id"`
			IsAppAuthor bool  `json:"is_app_author"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(99), resp.ID)
		assert.True(t, resp.IsAppAuthor)
	})

	t.Run("empty text -> 400", func(t *testing.T) {
		router := newTestRouter(handlerDeps{})
		rec := doJSON(t, router, http.MethodPost, "/api/v1/feedback", `{"prNumber": 42, "commentText": "   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing PR number -> 400", func(t *testing.T) {
		router := newTestRouter(handlerDeps{})
		rec := doJSON(t, router, http.MethodPost, "/api/v1/feedback", `{"commentText": "hello"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListRecentBuilds(t *testing.T) {
	t.Run("qualifying PRs -> 200 feed", func(t *testing.T) {
		created := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
		client := &stubGitHubClient{
			listPullRequests: func(_ context.Context, state, _ string, _ int) ([]model.PullRequest, error) {
				if state != "open" {
					return nil, nil
				}
				return []model.PullRequest{{
					Number:    10,
					Title:     model.GeneratedToolTitlePrefix + "JSON Formatter",
					Branch:    "feat/gen-json-formatter",
					Status:    model.PRStatusOpen,
					CreatedAt: created,
				}}, nil
			},
		}
		router := newTestRouter(handlerDeps{client: client})

		rec := doJSON(t, router, http.MethodGet, "/api/v1/recent-builds?limit=5", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Builds []struct {
				PRNumber      int    `json:"pr_number"`
				ToolDirective string `json:"tool_directive"`
				Status        string `json:"status"`
			} `json:"builds"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		require.Len(t, resp.Builds, 1)
		assert.Equal(t, 10, resp.Builds[0].PRNumber)
		assert.Equal(t, "json-formatter", resp.Builds[0].ToolDirective)
		assert.Equal(t, "open", resp.Builds[0].Status)
		assert.Empty(t, resp.Error)
	})

	t.Run("internal failure -> 200 with empty list and error field", func(t *testing.T) {
		broker := &stubBroker{err: &model.AuthError{Reason: "installation not found"}}
		router := newTestRouter(handlerDeps{broker: broker})

		rec := doJSON(t, router, http.MethodGet, "/api/v1/recent-builds", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Builds []any  `json:"builds"`
			Error  string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Builds)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("non-numeric limit -> 400", func(t *testing.T) {
		router := newTestRouter(handlerDeps{})
		rec := doJSON(t, router, http.MethodGet, "/api/v1/recent-builds?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
