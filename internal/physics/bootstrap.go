package physics

import (
	"context"
	"errors"
	"fmt"
)

var ErrBootstrapFailed = errors.New("physics bootstrap failed")

// Initializer builds a ready world.
type Initializer func(ctx context.Context) (*World, error)

// Bootstrap hands over a world once it is initialised. Poll never blocks and
// returns ready=false until the world is available.
type Bootstrap interface {
	Poll() (world *World, ready bool, err error)
}

type bootstrapResult struct {
	world *World
	err   error
}

// AsyncBootstrap initialises the world on its own goroutine.
type AsyncBootstrap struct {
	results chan bootstrapResult
	world   *World
	err     error
	done    bool
}

func NewAsyncBootstrap(ctx context.Context, init Initializer) *AsyncBootstrap {
	bootstrap := &AsyncBootstrap{
		results: make(chan bootstrapResult, 1),
	}

	go func() {
		world, err := init(ctx)
		bootstrap.results <- bootstrapResult{world: world, err: err}
	}()

	return bootstrap
}

func (b *AsyncBootstrap) Poll() (*World, bool, error) {
	if b.done {
		return b.world, b.err == nil, b.err
	}

	select {
	case result := <-b.results:
		b.done = true
		b.world = result.world

		if result.err != nil {
			b.err = fmt.Errorf("%w: %w", ErrBootstrapFailed, result.err)
		} else if result.world == nil {
			b.err = fmt.Errorf("%w: initializer returned no world", ErrBootstrapFailed)
		}

		return b.world, b.err == nil, b.err
	default:
		return nil, false, nil
	}
}

// DeferredBootstrap becomes ready on a fixed poll, running the initializer on
// the polling goroutine. Used for deterministic runs.
type DeferredBootstrap struct {
	remaining int
	init      Initializer
	world     *World
	err       error
	done      bool
}

func NewDeferredBootstrap(polls int, init Initializer) *DeferredBootstrap {
	return &DeferredBootstrap{
		remaining: polls,
		init:      init,
	}
}

func (b *DeferredBootstrap) Poll() (*World, bool, error) {
	if b.done {
		return b.world, b.err == nil, b.err
	}

	if b.remaining > 0 {
		b.remaining--

		return nil, false, nil
	}

	b.done = true

	world, err := b.init(context.Background())
	if err != nil {
		b.err = fmt.Errorf("%w: %w", ErrBootstrapFailed, err)

		return nil, false, b.err
	}

	b.world = world

	return world, true, nil
}
