package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
)

// Multi-step operations that touch the remote source run as
// Validate → Perform → Verify → Archive → Respond, so local state is only
// written once the remote side has been confirmed.
//
//   1. VALIDATE  - check inputs and preconditions before any state changes
//   2. PERFORM   - call the remote source
//   3. VERIFY    - confirm the remote now agrees, independently of Perform's result
//   4. ARCHIVE   - record the verified state locally
//   5. RESPOND   - shape the result for the caller
//
// Restoring a local version after a conflict is the main user: push the
// local quote, re-run a full sync, then drop the restored IDs from a report
// the re-sync could not refresh.

// ExecutionStep represents a step in the transactional pattern.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// Executor runs operations step by step with logging and tracing.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the functions for each step. Nil steps are skipped.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation for logging and tracing.
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// runStep logs and traces one step.
func runStep(ctx context.Context, logger *slog.Logger, step ExecutionStep, message string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "step "+string(step), attribute.String("step", string(step)))

	logger.DebugContext(ctx, "running step", slog.String("step", string(step)))

	err := fn(ctx)
	telemetry.EndSpan(span, err)

	if err != nil {
		if step == StepValidate || step == StepRespond {
			logger.WarnContext(ctx, "step failed", slog.String("step", string(step)), slog.Any("error", err))
		} else {
			logger.ErrorContext(ctx, "step failed", slog.String("step", string(step)), slog.Any("error", err))
		}

		if step == StepRespond {
			return err
		}

		return stepError(step, message, err)
	}

	return nil
}

// Execute runs an operation through every step, stopping at the first failure.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (result O, err error) {
	ctx, span := telemetry.StartSpan(ctx, op.Name, attribute.String("operation", op.Name))
	defer func() { telemetry.EndSpan(span, err) }()

	logger := exec.logger
	if l, ok := logging.Lookup(ctx); ok {
		logger = l
	}

	logger = logger.With(slog.String("operation", op.Name))
	start := time.Now()

	var (
		zero      O
		performed P
		verified  V
	)

	if op.Validate != nil {
		if err := runStep(ctx, logger, StepValidate, "input validation failed", func(ctx context.Context) error {
			return op.Validate(ctx, input)
		}); err != nil {
			return zero, err
		}
	}

	if op.Perform != nil {
		if err := runStep(ctx, logger, StepPerform, "operation failed", func(ctx context.Context) (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Verify != nil {
		if err := runStep(ctx, logger, StepVerify, "verification failed", func(ctx context.Context) (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Archive != nil {
		if err := runStep(ctx, logger, StepArchive, "state persistence failed", func(ctx context.Context) error {
			return op.Archive(ctx, input, verified)
		}); err != nil {
			return zero, err
		}
	}

	if op.Respond != nil {
		if err := runStep(ctx, logger, StepRespond, "", func(ctx context.Context) (err error) {
			result, err = op.Respond(ctx, input, verified)
			return err
		}); err != nil {
			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
