package async

import (
	"context"
	"sync"
)

// Future is the eventual result of a background call.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await blocks until the call returns.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext blocks until the call returns or ctx is done. In the latter
// case it returns ErrTimeout joined with the context error; the call keeps
// running.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, joinTimeout(ctx.Err())
	}
}

// Done is closed when the call has returned.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// Group tracks background calls. The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Wait blocks until every call started through g has returned, or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return joinTimeout(ctx.Err())
	}
}

// Go calls fn(ctx, param) on a new goroutine. g may be nil when nothing
// needs to wait for the call.
func Go[T, U any](g *Group, ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	if g != nil {
		g.wg.Add(1)
	}

	go func() {
		defer func() {
			close(f.done)
			if g != nil {
				g.wg.Done()
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll awaits every future in order and returns all results. The error
// is the first one encountered, after every future has completed.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var firstErr error
	for i, f := range futures {
		res, err := f.Await()
		results[i] = res
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}

func joinTimeout(err error) error {
	if err == nil {
		return ErrTimeout
	}
	return &timeoutError{cause: err}
}

type timeoutError struct{ cause error }

func (e *timeoutError) Error() string   { return ErrTimeout.Error() + ": " + e.cause.Error() }
func (e *timeoutError) Unwrap() []error { return []error{ErrTimeout, e.cause} }
