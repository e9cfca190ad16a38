// Package settle runs independent units of work concurrently and collects every
// outcome, successful or not, in submission order.
package settle

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Outcome is the settled result of one unit of work.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the unit completed without error.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Failure identifies a unit that settled with an error.
type Failure struct {
	Index int
	Err   error
}

// Work produces the value for the unit at index i.
type Work[T any] func(ctx context.Context, i int) (T, error)

// All runs n units with at most limit in flight (limit <= 0 means unbounded) and
// waits for every one of them. A failing unit never cancels its siblings, and a
// panicking unit settles as an error.
func All[T any](ctx context.Context, n, limit int, work Work[T]) []Outcome[T] {
	outcomes := make([]Outcome[T], n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes[i] = run(ctx, i, work)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func run[T any](ctx context.Context, i int, work Work[T]) (out Outcome[T]) {
	out.Index = i
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("unit %d panicked: %v", i, r)
		}
	}()
	out.Value, out.Err = work(ctx, i)
	return out
}

// Partition splits outcomes into successful values and failures, both in
// submission order. The values slice is never nil.
func Partition[T any](outcomes []Outcome[T]) ([]T, []Failure) {
	values := make([]T, 0, len(outcomes))
	var failures []Failure
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, Failure{Index: o.Index, Err: o.Err})
			continue
		}
		values = append(values, o.Value)
	}
	return values, failures
}
