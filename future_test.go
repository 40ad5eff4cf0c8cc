package conduit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/conduit/wire"
)

func TestFutureResolvesOnce(t *testing.T) {
	f := newFuture()

	f.complete(&wire.Ready{}, nil)
	f.complete(nil, errors.New("second resolution must not win"))

	resp, err := f.Get()
	require.NoError(t, err)
	require.IsType(t, &wire.Ready{}, resp)

	// Repeated reads observe the same outcome.
	resp, err = f.Get()
	require.NoError(t, err)
	require.NotNil(t, resp)
}

func TestFutureGetBlocksUntilResolved(t *testing.T) {
	f := newFuture()

	select {
	case <-f.Done():
		t.Fatal("future resolved before completion")
	default:
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.complete(nil, errors.New("boom"))
	}()

	_, err := f.Get()
	require.EqualError(t, err, "boom")

	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed after resolution")
	}
}

func TestFutureGetContextCancellation(t *testing.T) {
	f := newFuture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GetContext(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The future itself is untouched by the abandoned wait.
	f.complete(&wire.Ready{}, nil)
	resp, err := f.GetContext(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp)
}
