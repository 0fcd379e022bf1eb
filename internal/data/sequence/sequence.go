// Package sequence hands out primary keys for newly derived records.
package sequence

import (
	"context"
	"sync/atomic"
)

// Sequence yields strictly increasing ids.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// Counter is an in-process monotonic sequence. The first id handed out is
// start+1.
type Counter struct {
	v atomic.Int64
}

func NewCounter(start int64) *Counter {
	c := &Counter{}
	c.v.Store(start)
	return c
}

func (c *Counter) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.v.Add(1), nil
}

// Current returns the last id handed out (or start when none was).
func (c *Counter) Current() int64 { return c.v.Load() }
