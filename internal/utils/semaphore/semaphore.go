package semaphore

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoSlot = errors.New("semaphore: no free slot")

type Semaphore struct {
	semaCh chan struct{}
}

// New panics if size is zero: a semaphore that never admits is a bug.
func New(size uint64) *Semaphore {
	if size == 0 {
		panic("semaphore: zero size")
	}
	return &Semaphore{
		semaCh: make(chan struct{}, size),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.semaCh <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNoSlot, ctx.Err())
	}
}

func (s *Semaphore) Release() {
	<-s.semaCh
}

// Do runs f while holding a slot.
func (s *Semaphore) Do(ctx context.Context, f func()) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	defer s.Release()
	f()
	return nil
}
