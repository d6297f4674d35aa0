package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oetdev/toolforge/internal/domain/model"
)

func TestTagAutomationIdentity(t *testing.T) {
	known := []string{"github-actions[bot]", "toolforge-app[bot]", "netlify[bot]"}

	t.Run("exact match -> tagged", func(t *testing.T) {
		assert.Equal(t, "toolforge-app[bot]", model.TagAutomationIdentity("toolforge-app[bot]", known))
	})

	t.Run("case-insensitive match -> canonical identity returned", func(t *testing.T) {
		assert.Equal(t, "netlify[bot]", model.TagAutomationIdentity("Netlify[bot]", known))
	})

	t.Run("human author -> empty", func(t *testing.T) {
		assert.Equal(t, "", model.TagAutomationIdentity("alice", known))
	})

	t.Run("no known identities -> empty", func(t *testing.T) {
		assert.Equal(t, "", model.TagAutomationIdentity("github-actions[bot]", nil))
	})
}

func TestSortRunsNewestFirst(t *testing.T) {
	at := func(min int) time.Time {
		return time.Date(2026, 8, 30, 12, min, 0, 0, time.UTC)
	}

	summary := &model.CISummary{
		Runs: map[model.RunCategory][]model.WorkflowRun{
			model.CategoryValidation: {
				{ID: 1, CreatedAt: at(0)},
				{ID: 3, CreatedAt: at(20)},
				{ID: 2, CreatedAt: at(10)},
			},
			model.CategoryGeneration: {
				{ID: 4, CreatedAt: at(5)},
			},
		},
	}

	summary.SortRunsNewestFirst()

	validation := summary.Runs[model.CategoryValidation]
	assert.Equal(t, []int64{3, 2, 1}, []int64{validation[0].ID, validation[1].ID, validation[2].ID})
	assert.Len(t, summary.Runs[model.CategoryGeneration], 1)
}
