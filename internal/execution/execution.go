// Package execution selects between running a loop body inline and fanning
// it out over a bounded pool of goroutines with a join barrier.
package execution

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Mode chooses how an index operation executes its inner loop.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "seq"/"sequential" and "par"/"parallel".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "seq", "sequential":
		return Sequential, nil
	case "par", "parallel":
		return Parallel, nil
	default:
		return 0, fmt.Errorf("unknown execution mode %q", s)
	}
}

// Workers normalises a configured worker count; zero or less means
// GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ForEach calls fn(i) for every i in [0, n). In Sequential mode the calls run
// in order on the calling goroutine. In Parallel mode at most workers calls
// run at once and ForEach returns only after all of them finished.
// The first error stops the scheduling of further calls and is returned.
func ForEach(ctx context.Context, mode Mode, workers, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == Sequential || n == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))
	scheduled := 0
	for ; scheduled < n; scheduled++ {
		if gctx.Err() != nil {
			break
		}
		i := scheduled
		g.Go(func() error {
			return fn(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if scheduled < n {
		return ctx.Err()
	}
	return nil
}
