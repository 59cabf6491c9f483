package binding

import (
	"context"
	"errors"
	"log/slog"
)

// Stage names the step at which a cause was discarded.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageLookup  Stage = "lookup"
	StageInvoke  Stage = "invoke"
	StageCompat  Stage = "compat"
)

// Diagnostic records a cause that was folded into absence. Emitting it never
// changes what the lookup returns.
type Diagnostic struct {
	Stage       Stage
	ValidatorID string
	RuleID      string
	Kind        Kind
	Name        string
	Err         error
}

// DiagnosticHandler receives diagnostics. It may be called concurrently.
type DiagnosticHandler func(Diagnostic)

// LogDiagnostics returns a handler that writes each diagnostic to logger at
// debug level.
func LogDiagnostics(logger *slog.Logger) DiagnosticHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(d Diagnostic) {
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			return
		}
		attrs := []any{
			"stage", string(d.Stage),
			"kind", d.Kind.String(),
			"name", d.Name,
		}
		if d.ValidatorID != "" {
			attrs = append(attrs, "validator", d.ValidatorID)
		}
		if d.RuleID != "" {
			attrs = append(attrs, "rule", d.RuleID)
		}
		if d.Err != nil {
			attrs = append(attrs, "error", d.Err)
		}
		logger.Debug("Artifact binding absent", attrs...)
	}
}

func stageOf(err error) Stage {
	switch {
	case errors.Is(err, ErrInvocation), errors.Is(err, ErrResultShape):
		return StageInvoke
	case errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrSignatureMismatch):
		return StageLookup
	}
	return StageResolve
}
