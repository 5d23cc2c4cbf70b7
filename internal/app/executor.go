package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// An Operation is a sequence of up to five steps. Each step sees the output
// of the one before it, and any step may be nil:
//
//	validate  reject bad input before anything happens
//	perform   the I/O, e.g. pulling the remote list
//	verify    derive the new state from what perform returned and check it
//	archive   apply the verified state (push, commit, save)
//	respond   shape the result
//
// The first failing step ends the run. Its error comes back as an
// *ExecutionError naming the operation and step, so a failed pull is told
// apart from a failed save.

// ExecutionStep names a step of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError is returned by Execute when a step fails.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

func (e *ExecutionError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
	}

	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Executor carries what every run shares.
type Executor struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewExecutor returns an executor logging to logger, or slog.Default when nil.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, now: time.Now}
}

// Operation holds the step functions for Execute. I is the input, P what
// perform produces, V the verified state and O the result.
type Operation[I, P, V, O any] struct {
	Name     string
	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op against input. A context cancelled between steps stops
// the run before the next step starts.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		out       O
		performed P
		verified  V
		err       error
	)

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := exec.now()

	fail := func(step ExecutionStep, cause error) (O, error) {
		level := slog.LevelError
		if step == StepValidate || errors.Is(cause, context.Canceled) {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", cause),
		)

		var zero O

		return zero, &ExecutionError{Operation: op.Name, Step: step, Cause: cause}
	}

	enter := func(step ExecutionStep) error {
		logger.Log(ctx, logging.LevelTrace, "operation step", slog.String("step", string(step)))
		return ctx.Err()
	}

	if op.Validate != nil {
		if err = enter(StepValidate); err == nil {
			err = op.Validate(ctx, input)
		}

		if err != nil {
			return fail(StepValidate, err)
		}
	}

	if op.Perform != nil {
		if err = enter(StepPerform); err == nil {
			performed, err = op.Perform(ctx, input)
		}

		if err != nil {
			return fail(StepPerform, err)
		}
	}

	if op.Verify != nil {
		if err = enter(StepVerify); err == nil {
			verified, err = op.Verify(ctx, input, performed)
		}

		if err != nil {
			return fail(StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err = enter(StepArchive); err == nil {
			err = op.Archive(ctx, input, verified)
		}

		if err != nil {
			return fail(StepArchive, err)
		}
	}

	if op.Respond != nil {
		// Respond runs even when ctx was cancelled during archive.
		if out, err = op.Respond(ctx, input, verified); err != nil {
			return fail(StepRespond, err)
		}
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", exec.now().Sub(start)))

	return out, nil
}

// IsExecutionError reports whether err came from a failed step.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError

	return errors.As(err, &execErr)
}

// GetExecutionStep returns the step that produced err.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return "", false
	}

	return execErr.Step, true
}
