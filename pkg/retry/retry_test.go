package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 5, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("always fails")
	}, cfg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_RetryIfRejectsError(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 5, InitialDelay: time.Millisecond, RetryIf: func(err error) bool { return false }}
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	}, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (RetryIf should stop retries)", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return errors.New("fails")
	}, DefaultConfig())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (context already cancelled)", calls)
	}
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	cfg := Config{MaxRetries: 3, InitialDelay: time.Millisecond}
	result, err := DoWithResult(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
	if !IsRetryable(errors.New("plain error")) {
		t.Error("plain errors default to retryable")
	}
	if IsRetryable(Permanent(errors.New("boom"))) {
		t.Error("Permanent error should not be retryable")
	}
	if !IsRetryable(Temporary(errors.New("boom"))) {
		t.Error("Temporary error should be retryable")
	}
}

func TestRetryIfNotContext(t *testing.T) {
	if RetryIfNotContext(context.Canceled) {
		t.Error("context.Canceled should not be retried")
	}
	if RetryIfNotContext(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded should not be retried")
	}
	if !RetryIfNotContext(errors.New("other")) {
		t.Error("other errors should be retried")
	}
}

func TestRetryer(t *testing.T) {
	r := NewRetryer(Config{MaxRetries: 3, InitialDelay: time.Millisecond})
	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("retry me")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryN(t *testing.T) {
	calls := 0
	err := RetryN(context.Background(), func() error {
		calls++
		return errors.New("always fails")
	}, 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
