package datasets

import (
	"context"
	"sync"

	"github.com/slotnet/slotnet/syncs"
)

// Batches builds batches from the given sample order concurrently, at most
// workers at a time, reading the sample slice strictly read-only. Delivery
// order is not the submission order. The channel closes once the order is
// exhausted or ctx is canceled.
func Batches(
	ctx context.Context,
	samples []Sample,
	order []int,
	batchSize int,
	seqLen int,
	workers int,
) <-chan Batch {
	if workers < 1 {
		workers = 1
	}

	out := make(chan Batch, workers)
	semaphore := syncs.NewSemaphore(workers)

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(out)
		}()

		for start := 0; start < len(order); start += batchSize {
			if !semaphore.AcquireContext(ctx) {
				return
			}
			indices := order[start:min(start+batchSize, len(order))]

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer semaphore.Release()

				group := make([]Sample, len(indices))
				for i, idx := range indices {
					group[i] = samples[idx]
				}
				select {
				case out <- BuildBatch(group, seqLen):
				case <-ctx.Done():
				}
			}()
		}
	}()

	return out
}
