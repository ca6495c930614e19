package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConnectRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	var notified []error
	policy := RetryPolicy{
		MaxRetries: 5,
		MaxDelay:   time.Millisecond,
		Notify: func(err error, _ time.Duration) {
			notified = append(notified, err)
		},
	}

	err := Connect(context.Background(), policy, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not ready")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(notified) != 2 {
		t.Fatalf("expected 2 retry notifications, got %d", len(notified))
	}
}

func TestConnectGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	wantErr := errors.New("down")
	policy := RetryPolicy{MaxRetries: 2, MaxDelay: time.Millisecond}

	err := Connect(context.Background(), policy, func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 1 attempt plus 2 retries, got %d", attempts)
	}
}

func TestConnectStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Connect(ctx, RetryPolicy{MaxRetries: 10, MaxDelay: time.Millisecond}, func(context.Context) error {
		attempts++
		return errors.New("down")
	})
	if err == nil {
		t.Fatalf("expected error for cancelled context")
	}
	if attempts > 1 {
		t.Fatalf("expected at most one attempt, got %d", attempts)
	}
}
