package syncs

import "context"

type Semaphore chan bool

func NewSemaphore(n int) Semaphore {
	return make(chan bool, n)
}

func (s Semaphore) Acquire() {
	s <- true
}

// AcquireContext reports false when ctx is done before a slot frees up.
func (s Semaphore) AcquireContext(ctx context.Context) bool {
	select {
	case s <- true:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s Semaphore) Release() {
	<-s
}
