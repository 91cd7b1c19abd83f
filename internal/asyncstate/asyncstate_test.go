package asyncstate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRun_Success(t *testing.T) {
	var seen []State
	tr := New(func(s State) { seen = append(seen, s) })

	got, err := Run(context.Background(), tr, func(ctx context.Context) (int, error) {
		if !tr.Loading() {
			t.Error("expected loading during op")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("expected 42, got %d (%v)", got, err)
	}
	if tr.Loading() {
		t.Error("expected loading false after success")
	}
	if tr.Err() != "" {
		t.Errorf("expected no error, got %q", tr.Err())
	}
	if len(seen) != 2 || !seen[0].Loading || seen[1].Loading {
		t.Errorf("expected [loading, idle] transitions, got %+v", seen)
	}
}

func TestRun_FailurePropagatesOriginalError(t *testing.T) {
	tr := New(nil)
	sentinel := errors.New("insufficient funds for this trade")

	_, err := Run(context.Background(), tr, func(ctx context.Context) (string, error) {
		return "", sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected original error, got %v", err)
	}
	if tr.Loading() {
		t.Error("expected loading false after failure")
	}
	if tr.Err() != sentinel.Error() {
		t.Errorf("expected error message %q, got %q", sentinel.Error(), tr.Err())
	}
}

func TestRun_ClearsPriorError(t *testing.T) {
	tr := New(nil)
	tr.SetError("stale")

	Do(context.Background(), tr, func(ctx context.Context) error {
		if tr.Err() != "" {
			t.Errorf("expected error cleared at start, got %q", tr.Err())
		}
		return nil
	})
}

func TestRun_Cancellation(t *testing.T) {
	tr := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, tr, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.Loading() {
		t.Error("expected loading false after cancellation")
	}
}

func TestRun_PanicResetsLoading(t *testing.T) {
	tr := New(nil)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		Do(context.Background(), tr, func(ctx context.Context) error {
			panic("defect")
		})
	}()

	if tr.Loading() {
		t.Error("expected loading false after panic")
	}
}

func TestRun_OverlappingOperations(t *testing.T) {
	tr := New(nil)
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Do(context.Background(), tr, func(ctx context.Context) error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}
	<-started
	<-started
	if !tr.Loading() {
		t.Error("expected loading while both ops run")
	}
	close(release)
	wg.Wait()
	if tr.Loading() {
		t.Error("expected loading false once all ops finish")
	}
}
