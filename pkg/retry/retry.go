// Package retry implements adaptive retry with failure-context injection
// for AXON's refine blocks: execute a step, and on failure, inject the
// prior error into the next attempt, back off, and try again up to a
// configured ceiling.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Bemarking/axon-ai/pkg/axerrors"
	"github.com/Bemarking/axon-ai/pkg/trace"
)

// Backoff strategies.
const (
	BackoffNone        = "none"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

var validBackoffStrategies = map[string]bool{
	BackoffNone:        true,
	BackoffLinear:      true,
	BackoffExponential: true,
}

// Default timing constants, reproduced exactly from the runtime this
// engine is ported from.
const (
	linearBaseDelay      = 1.0 * time.Second
	exponentialBaseDelay = 0.5 * time.Second
	exponentialMultiplier = 2.0
	maxDelay             = 30 * time.Second
)

// Exhaustion actions.
const (
	OnExhaustionRaise    = ""
	OnExhaustionFallback = "fallback"
	OnExhaustionSkip     = "skip"
)

// Config is the runtime representation of a refine block: how many
// times a step may be retried, what backoff strategy to use, and what
// to do when all attempts fail.
type Config struct {
	MaxAttempts         int
	PassFailureContext  bool
	Backoff             string
	OnExhaustion        string
	OnExhaustionTarget  string
}

// DefaultConfig returns a Config equivalent to RefineConfig()'s Python
// defaults: three attempts, failure context passed forward, no backoff.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, PassFailureContext: true, Backoff: BackoffNone}
}

// Validate checks the configuration's invariants.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.Backoff != "" && !validBackoffStrategies[c.Backoff] {
		return fmt.Errorf("invalid backoff strategy %q, must be one of: exponential, linear, none", c.Backoff)
	}
	return nil
}

// AttemptRecord records the outcome of a single execution attempt.
type AttemptRecord struct {
	Attempt   int
	Success   bool
	Result    any
	Error     string
	ErrorType string
}

// Result is the aggregate outcome of a retry sequence.
type Result struct {
	Success   bool
	Result    any
	Attempts  []AttemptRecord
	Exhausted bool
}

// Func is the step callable a retry sequence executes. On attempts
// after the first, when Config.PassFailureContext is set, failureContext
// carries the previous attempt's error message; otherwise it is empty.
type Func func(ctx context.Context, failureContext string) (any, error)

// Engine wraps step execution with configurable retry and refine logic.
// It is stateless between calls — all state is scoped to a single
// ExecuteWithRetry invocation.
type Engine struct{}

// New creates a retry Engine.
func New() *Engine { return &Engine{} }

// ExecuteWithRetry runs fn repeatedly until it succeeds or config's
// attempt ceiling is reached. If config is the zero value, fn runs
// exactly once with no retry.
//
// Returns an *axerrors.RefineExhaustedError if all attempts fail and
// config.OnExhaustion is OnExhaustionRaise (the default); a skip
// exhaustion instead returns a non-error Result with Exhausted set.
func (e *Engine) ExecuteWithRetry(ctx context.Context, fn Func, config Config, tracer *trace.Tracer, stepName, flowName string) (Result, error) {
	if config.MaxAttempts == 0 {
		config = Config{MaxAttempts: 1}
	}

	var attempts []AttemptRecord
	var lastError string

	if tracer != nil && config.MaxAttempts > 1 {
		tracer.Emit(trace.RefineStart, stepName, map[string]any{
			"max_attempts": config.MaxAttempts,
			"backoff":      config.Backoff,
		}, 0)
	}

	for attemptNum := 1; attemptNum <= config.MaxAttempts; attemptNum++ {
		failureContext := ""
		if attemptNum > 1 && config.PassFailureContext && lastError != "" {
			failureContext = lastError
		}

		result, err := fn(ctx, failureContext)
		if err == nil {
			attempts = append(attempts, AttemptRecord{Attempt: attemptNum, Success: true, Result: result})
			return Result{Success: true, Result: result, Attempts: attempts}, nil
		}

		lastError = err.Error()
		errorType := fmt.Sprintf("%T", err)
		attempts = append(attempts, AttemptRecord{
			Attempt:   attemptNum,
			Success:   false,
			Error:     lastError,
			ErrorType: errorType,
		})

		if tracer != nil {
			tracer.EmitRetryAttempt(stepName, attemptNum, lastError, map[string]any{"error_type": errorType})
		}

		if attemptNum < config.MaxAttempts {
			delay := computeDelay(attemptNum, config.Backoff)
			if delay > 0 {
				select {
				case <-ctx.Done():
					return Result{Success: false, Attempts: attempts, Exhausted: true}, ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}

	exhaustedResult := Result{Success: false, Attempts: attempts, Exhausted: true}

	if config.OnExhaustion == OnExhaustionSkip {
		return exhaustedResult, nil
	}

	return exhaustedResult, axerrors.NewRefineExhaustedError(
		axerrors.ErrorContext{StepName: stepName, FlowName: flowName, Attempt: config.MaxAttempts},
		config.MaxAttempts,
		fmt.Errorf("%s", lastError),
	)
}

// computeDelay returns the backoff delay before the attempt after the
// given (1-based) attempt number, for the given strategy.
func computeDelay(attempt int, strategy string) time.Duration {
	switch strategy {
	case BackoffLinear:
		delay := time.Duration(attempt) * linearBaseDelay
		return minDuration(delay, maxDelay)
	case BackoffExponential:
		delay := float64(exponentialBaseDelay) * math.Pow(exponentialMultiplier, float64(attempt))
		if delay >= float64(maxDelay) {
			return maxDelay
		}
		return time.Duration(delay)
	default:
		return 0
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
