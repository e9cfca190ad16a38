package settle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllPreservesSubmissionOrder(t *testing.T) {
	n := 10
	outcomes := All(context.Background(), n, 0, func(ctx context.Context, i int) (int, error) {
		// Later units finish first.
		time.Sleep(time.Duration(n-i) * time.Millisecond)
		return i * i, nil
	})
	if len(outcomes) != n {
		t.Fatalf("expected %d outcomes, got %d", n, len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i || o.Value != i*i || !o.OK() {
			t.Fatalf("unexpected outcome at %d: %+v", i, o)
		}
	}
}

func TestAllDoesNotShortCircuit(t *testing.T) {
	var ran atomic.Int32
	outcomes := All(context.Background(), 6, 2, func(ctx context.Context, i int) (string, error) {
		ran.Add(1)
		if i%2 == 0 {
			return "", fmt.Errorf("unit %d failed", i)
		}
		return fmt.Sprintf("v%d", i), nil
	})
	if ran.Load() != 6 {
		t.Fatalf("expected every unit to run, got %d", ran.Load())
	}

	values, failures := Partition(outcomes)
	if len(values) != 3 || values[0] != "v1" || values[1] != "v3" || values[2] != "v5" {
		t.Fatalf("unexpected values: %v", values)
	}
	if len(failures) != 3 || failures[0].Index != 0 || failures[2].Index != 4 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
}

func TestAllRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	All(context.Background(), 12, 3, func(ctx context.Context, i int) (struct{}, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	if peak.Load() > 3 {
		t.Fatalf("expected at most 3 units in flight, saw %d", peak.Load())
	}
}

func TestAllRecoversPanics(t *testing.T) {
	outcomes := All(context.Background(), 2, 0, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			panic("boom")
		}
		return 1, nil
	})
	if !outcomes[0].OK() {
		t.Fatalf("first unit should succeed")
	}
	if outcomes[1].Err == nil {
		t.Fatalf("panicking unit should settle with an error")
	}
}

func TestPartitionAllFailed(t *testing.T) {
	outcomes := []Outcome[int]{{Index: 0, Err: errors.New("a")}, {Index: 1, Err: errors.New("b")}}
	values, failures := Partition(outcomes)
	if values == nil || len(values) != 0 {
		t.Fatalf("expected empty non-nil values, got %#v", values)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
}

func TestAllZeroUnits(t *testing.T) {
	outcomes := All(context.Background(), 0, 4, func(ctx context.Context, i int) (int, error) {
		t.Fatalf("work should not run")
		return 0, nil
	})
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes")
	}
}
