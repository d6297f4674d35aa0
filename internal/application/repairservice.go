package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// repairPromptTemplate is the fixed prompt for one file repair. The model is
// told to answer with the complete corrected file and nothing else; fenced
// wrappers are tolerated and stripped during normalization anyway.
const repairPromptTemplate = `You are fixing lint errors in a generated source file.

File path: %s

Current file content:
%s

Lint errors reported for this file:
%s

Return the complete corrected content of this one file. Do not add
explanations, commentary, or markdown formatting around the code.`

// fencePattern strips a single leading/trailing fenced code block marker,
// optionally tagged with a language name.
var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z0-9]*\\n?(.*?)\\n?```$")

// RepairService drives the per-file lint repair state machine. Files are
// processed strictly sequentially: one generation call completes before the
// next file begins, keeping per-file log ordering stable and model load
// bounded.
type RepairService struct {
	generator       driven.Generator
	defaultModel    string
	generateTimeout time.Duration
	telemetry       *Telemetry
}

// NewRepairService creates a RepairService. telemetry may be nil.
func NewRepairService(generator driven.Generator, defaultModel string, generateTimeout time.Duration, telemetry *Telemetry) *RepairService {
	return &RepairService{
		generator:       generator,
		defaultModel:    defaultModel,
		generateTimeout: generateTimeout,
		telemetry:       telemetry,
	}
}

// Repair runs the repair state machine over the batch and returns per-file
// outcomes plus the derived batch status. A failure in one file never
// cancels or corrupts another's outcome; the batch as a whole only fails
// when every file failed.
func (s *RepairService) Repair(ctx context.Context, files []model.FileFixRequest, lintReport, modelName string) (map[string]model.FileFixOutcome, model.BatchStatus) {
	if modelName == "" {
		modelName = s.defaultModel
	}

	outcomes := make(map[string]model.FileFixOutcome, len(files))
	for _, file := range files {
		outcomes[file.Path] = s.repairFile(ctx, file, lintReport, modelName)
	}

	status := model.DeriveBatchStatus(outcomes)
	slog.Info("repair batch complete", "files", len(files), "status", status)
	s.telemetry.RecordRepairBatch(status, outcomes)

	return outcomes, status
}

// repairFile runs one file through scope, prompt, generate, normalize, and
// accept-or-discard.
func (s *RepairService) repairFile(ctx context.Context, file model.FileFixRequest, lintReport, modelName string) model.FileFixOutcome {
	scoped := scopeLintReport(lintReport, file.Path)
	if scoped == "" {
		// No reported errors reference this file; skip the model call
		// entirely.
		slog.Debug("no lint errors for file, skipping generation", "path", file.Path)
		return model.FileFixOutcome{State: model.FixStateUnchanged, Content: file.CurrentContent}
	}

	prompt := fmt.Sprintf(repairPromptTemplate, file.Path, file.CurrentContent, scoped)

	genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	raw, err := s.generator.GenerateText(genCtx, modelName, prompt)
	if err != nil {
		return failedOutcome(file.Path, err)
	}

	normalized := normalizeResponse(raw)
	if normalized == "" || normalized == strings.TrimSpace(file.CurrentContent) {
		// The model proposed nothing, or proposed exactly what is already
		// there; discard its output so repeated runs stay idempotent.
		slog.Info("model proposed no effective change", "path", file.Path)
		return model.FileFixOutcome{State: model.FixStateUnchanged, Content: file.CurrentContent}
	}

	slog.Info("model proposed fix", "path", file.Path, "bytes", len(normalized))
	return model.FileFixOutcome{State: model.FixStateFixed, Content: normalized}
}

// failedOutcome records a generation failure for one file, tagging
// safety-filtered responses distinctly for observability.
func failedOutcome(path string, err error) model.FileFixOutcome {
	var genErr *model.GenerationError
	safetyBlocked := errors.As(err, &genErr) && genErr.SafetyBlocked

	if safetyBlocked {
		slog.Warn("generation blocked by safety filter", "path", path, "error", err)
	} else {
		slog.Error("generation failed", "path", path, "error", err)
	}

	return model.FileFixOutcome{
		State:         model.FixStateFailed,
		Reason:        err.Error(),
		SafetyBlocked: safetyBlocked,
	}
}

// scopeLintReport extracts only the report lines that reference the given
// path (substring match), joined back into one block.
func scopeLintReport(report, path string) string {
	var matched []string
	for _, line := range strings.Split(report, "\n") {
		if strings.Contains(line, path) {
			matched = append(matched, line)
		}
	}
	return strings.Join(matched, "\n")
}

// normalizeResponse trims the raw model output and strips one wrapping
// fenced code block (with or without a language tag) if present.
func normalizeResponse(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		trimmed = strings.TrimSpace(m[1])
	}
	return trimmed
}
