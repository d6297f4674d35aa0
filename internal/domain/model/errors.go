package model

import "fmt"

// ConfigError indicates missing or malformed credentials or settings.
// It is fatal and never retried.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Field)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AuthError indicates a failure to resolve the app installation or mint an
// installation token. Fatal for the request that needed it.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError indicates malformed caller input, rejected before any
// network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UpstreamError wraps a GitHub API failure. NotFound distinguishes missing
// resources from other failures; AuthFailure marks 401s so callers can
// invalidate a cached installation token.
type UpstreamError struct {
	Op          string
	StatusCode  int
	NotFound    bool
	AuthFailure bool
	Err         error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// GenerationError wraps a model call failure for a single file.
// SafetyBlocked marks responses rejected by the provider's safety filter;
// the distinction is observational only, the file still counts as failed.
type GenerationError struct {
	Path          string
	SafetyBlocked bool
	Err           error
}

func (e *GenerationError) Error() string {
	if e.SafetyBlocked {
		return fmt.Sprintf("generation blocked by safety filter for %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("generation failed for %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
