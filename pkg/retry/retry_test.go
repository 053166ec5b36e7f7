package retry

import (
	"context"
	"errors"
	"testing"
)

func TestExecuteWithRetrySucceedsFirstAttempt(t *testing.T) {
	e := New()
	calls := 0
	fn := func(ctx context.Context, failureContext string) (any, error) {
		calls++
		return "ok", nil
	}
	result, err := e.ExecuteWithRetry(context.Background(), fn, DefaultConfig(), nil, "extract", "Analyze")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Result != "ok" || calls != 1 {
		t.Fatalf("unexpected result: %+v, calls=%d", result, calls)
	}
}

func TestExecuteWithRetrySucceedsAfterFailures(t *testing.T) {
	e := New()
	calls := 0
	fn := func(ctx context.Context, failureContext string) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient failure")
		}
		return "recovered", nil
	}
	result, err := e.ExecuteWithRetry(context.Background(), fn, Config{MaxAttempts: 3, Backoff: BackoffNone}, nil, "extract", "Analyze")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || calls != 3 || len(result.Attempts) != 3 {
		t.Fatalf("unexpected result: %+v, calls=%d", result, calls)
	}
}

func TestExecuteWithRetryPassesFailureContext(t *testing.T) {
	e := New()
	var seenContexts []string
	fn := func(ctx context.Context, failureContext string) (any, error) {
		seenContexts = append(seenContexts, failureContext)
		if len(seenContexts) < 2 {
			return nil, errors.New("first failure")
		}
		return "done", nil
	}
	_, err := e.ExecuteWithRetry(context.Background(), fn, Config{MaxAttempts: 2, PassFailureContext: true}, nil, "extract", "Analyze")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenContexts[0] != "" {
		t.Errorf("first attempt should see no failure context, got %q", seenContexts[0])
	}
	if seenContexts[1] != "first failure" {
		t.Errorf("second attempt should see the prior error, got %q", seenContexts[1])
	}
}

func TestExecuteWithRetryExhaustionRaises(t *testing.T) {
	e := New()
	fn := func(ctx context.Context, failureContext string) (any, error) {
		return nil, errors.New("persistent failure")
	}
	result, err := e.ExecuteWithRetry(context.Background(), fn, Config{MaxAttempts: 2, Backoff: BackoffNone}, nil, "extract", "Analyze")
	if err == nil {
		t.Fatal("expected RefineExhaustedError")
	}
	if !result.Exhausted || result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExecuteWithRetryExhaustionSkip(t *testing.T) {
	e := New()
	fn := func(ctx context.Context, failureContext string) (any, error) {
		return nil, errors.New("persistent failure")
	}
	result, err := e.ExecuteWithRetry(context.Background(), fn, Config{MaxAttempts: 2, OnExhaustion: OnExhaustionSkip}, nil, "extract", "Analyze")
	if err != nil {
		t.Fatalf("skip exhaustion should not error: %v", err)
	}
	if !result.Exhausted {
		t.Fatal("expected Exhausted to be true")
	}
}

func TestConfigValidateRejectsBadInput(t *testing.T) {
	if err := (Config{MaxAttempts: 0}).Validate(); err == nil {
		t.Error("expected error for max_attempts < 1")
	}
	if err := (Config{MaxAttempts: 1, Backoff: "quadratic"}).Validate(); err == nil {
		t.Error("expected error for invalid backoff strategy")
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestComputeDelayStrategies(t *testing.T) {
	if computeDelay(2, BackoffNone) != 0 {
		t.Error("none strategy should have zero delay")
	}
	if got := computeDelay(2, BackoffLinear); got != 2*linearBaseDelay {
		t.Errorf("linear(2) = %v, want %v", got, 2*linearBaseDelay)
	}
	if got := computeDelay(100, BackoffExponential); got != maxDelay {
		t.Errorf("exponential should cap at MaxDelay, got %v", got)
	}
}
