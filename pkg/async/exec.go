package async

import (
	"context"
	"time"
)

// ExecFuture is a Future for computations that only report an error.
type ExecFuture struct {
	f *Future[struct{}]
}

// Exec runs fn asynchronously and returns a future for its error.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	return &ExecFuture{f: Async(ctx, param, func(ctx context.Context, p T) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})}
}

// Await blocks until fn returns.
func (e *ExecFuture) Await() error {
	_, err := e.f.Await()
	return err
}

// AwaitWithTimeout is Await bounded by timeout.
func (e *ExecFuture) AwaitWithTimeout(timeout time.Duration) error {
	_, err := e.f.AwaitWithTimeout(timeout)
	return err
}

// IsComplete reports whether fn has returned.
func (e *ExecFuture) IsComplete() bool {
	return e.f.IsComplete()
}

// ExecAll waits for every future and returns the first error in argument order.
func ExecAll(futures ...*ExecFuture) error {
	inner := make([]*Future[struct{}], len(futures))
	for i, e := range futures {
		inner[i] = e.f
	}
	_, err := WaitAll(inner...)
	return err
}

// ExecAny waits for the first future to finish and returns its index and error.
func ExecAny(futures ...*ExecFuture) (int, error) {
	inner := make([]*Future[struct{}], len(futures))
	for i, e := range futures {
		inner[i] = e.f
	}
	i, _, err := WaitAny(inner...)
	return i, err
}
