package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/tradedesk/internal/interfaces"
)

func TestStore_SetGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Get(ctx, "session_token"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "session_token", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := s.Get(ctx, "session_token")
	if err != nil || v != "abc" {
		t.Fatalf("expected abc, got %q (%v)", v, err)
	}
	if err := s.Delete(ctx, "session_token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "session_token"); err != nil {
		t.Fatalf("Delete of missing key should not error: %v", err)
	}
	if _, err := s.Get(ctx, "session_token"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
