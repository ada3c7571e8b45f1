package index_test

import (
	"context"
	"testing"
	"time"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	ctx := context.Background()

	require.NoError(t, g.BeginRead(ctx))
	require.NoError(t, g.BeginRead(ctx))
	g.EndRead()
	g.EndRead()
}

func TestGate_TryAcquireConflicts(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	ctx := context.Background()

	require.NoError(t, g.TryAcquire(ctx))
	err := g.TryAcquire(ctx)
	require.Error(t, err)
	assert.Equal(t, docdex.ECONFLICT, docdex.ErrorCode(err))

	g.Release()
	require.NoError(t, g.TryAcquire(ctx))
	g.Release()
}

func TestGate_WriterWaitsForReaders(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	ctx := context.Background()

	require.NoError(t, g.BeginRead(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = g.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired the gate while a reader was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	g.EndRead()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer did not acquire the gate after the reader finished")
	}
	g.Release()
}

func TestGate_ReaderWaitsForWriter(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	ctx := context.Background()

	require.NoError(t, g.TryAcquire(ctx))

	admitted := make(chan struct{})
	go func() {
		_ = g.BeginRead(ctx)
		close(admitted)
	}()

	select {
	case <-admitted:
		t.Fatal("reader was admitted while a writer was active")
	case <-time.After(50 * time.Millisecond):
	}

	g.Release()
	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatal("reader was not admitted after the writer released")
	}
	g.EndRead()
}

func TestGate_BeginReadHonorsContext(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	require.NoError(t, g.TryAcquire(context.Background()))
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.BeginRead(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	g := index.NewGate()
	ctx := context.Background()
	require.NoError(t, g.BeginRead(ctx))

	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := g.Acquire(tctx)
	require.Error(t, err)

	g.EndRead()

	// The abandoned acquire must have released the writer token and
	// reopened admission.
	require.NoError(t, g.TryAcquire(ctx))
	g.Release()
}
