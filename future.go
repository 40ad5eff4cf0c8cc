package conduit

import (
	"context"
	"sync"

	"github.com/arloliu/conduit/wire"
)

// Future is a one-shot result cell for a single request-response exchange.
//
// It is resolved exactly once, either with the server's response or with a
// failure; later resolution attempts are no-ops. Callers observe exactly
// one terminal outcome through Get or GetContext.
type Future struct {
	once sync.Once
	done chan struct{}
	resp wire.Response
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete resolves the future. Only the first call has any effect.
func (f *Future) complete(resp wire.Response, err error) {
	f.once.Do(func() {
		f.resp = resp
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves and returns its terminal outcome.
func (f *Future) Get() (wire.Response, error) {
	<-f.done

	return f.resp, f.err
}

// GetContext blocks until the future resolves or ctx is done, whichever
// comes first.
//
// A context error abandons the wait only; the request itself stays
// outstanding on the connection until a response, a transport failure, or
// Close resolves it.
func (f *Future) GetContext(ctx context.Context) (wire.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
