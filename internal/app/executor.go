package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quotebook/internal/app"

// ExecutionStep names one stage of an Operation.
type ExecutionStep string

// Stages in the order Execute runs them.
const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which stage of an operation failed.
type ExecutionError struct {
	Step  ExecutionStep
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s step: %v", e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// FailedStep reports the stage an error from Execute came from.
func FailedStep(err error) (ExecutionStep, bool) {
	var ee *ExecutionError
	if !errors.As(err, &ee) {
		return "", false
	}

	return ee.Step, true
}

// Executor runs operations with a span per operation and a log line per stage.
type Executor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor creates an Executor. A nil logger uses slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, tracer: otel.Tracer(instrumentationName)}
}

// Operation is a change that involves a remote system. Local state is only
// written in Archive, after Perform succeeded and Verify accepted its answer.
// Any stage may be nil and is then skipped with a zero result.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

type stage struct {
	step    ExecutionStep
	present bool
	run     func(context.Context) error
}

// Execute runs op's stages in order and stops at the first failure. Failures
// before Respond come back as *ExecutionError; a Respond failure is returned
// unchanged.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		performed P
		verified  V
		out       O
		zero      O
	)

	stages := []stage{
		{StepValidate, op.Validate != nil, func(ctx context.Context) error {
			return op.Validate(ctx, input)
		}},
		{StepPerform, op.Perform != nil, func(ctx context.Context) (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		}},
		{StepVerify, op.Verify != nil, func(ctx context.Context) (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		}},
		{StepArchive, op.Archive != nil, func(ctx context.Context) error {
			return op.Archive(ctx, input, verified)
		}},
		{StepRespond, op.Respond != nil, func(ctx context.Context) (err error) {
			out, err = op.Respond(ctx, input, verified)
			return err
		}},
	}

	logger := logging.Or(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	ctx, span := exec.tracer.Start(ctx, "app."+op.Name)
	defer span.End()

	for _, s := range stages {
		if !s.present {
			continue
		}

		span.AddEvent(string(s.step))

		err := s.run(ctx)
		if err == nil {
			continue
		}

		level := slog.LevelError
		if s.step == StepValidate || s.step == StepRespond {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(s.step)),
			slog.Any("error", err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(s.step)+" failed")

		if s.step != StepRespond {
			err = &ExecutionError{Step: s.step, Cause: err}
		}

		return zero, err
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}
