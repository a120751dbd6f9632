package sendtime

import (
	"context"
	"sync"
	"time"
)

// DefaultBatchWorkers bounds the concurrency of CalculateBatch when the
// caller passes zero.
const DefaultBatchWorkers = 8

// BatchResult aggregates the per-contact results of a batch run. Results are
// positionally aligned with the input contacts so each stays independently
// attributable.
type BatchResult struct {
	Results   []Result      `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// CalculateBatch computes send times for a list of contacts with a bounded
// worker pool. Contacts have no ordering requirement between them; the only
// shared state is the holiday cache and the statistics counters, both of
// which are concurrency safe. A canceled context stops workers from picking
// up further contacts; contacts never processed carry a failed Result with
// the context error.
func (c *Calculator) CalculateBatch(ctx context.Context, contacts []Contact, cfg ActivityConfig, workers int) BatchResult {
	start := c.now()
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if workers > len(contacts) {
		workers = len(contacts)
	}

	results := make([]Result, len(contacts))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = c.Calculate(ctx, contacts[i], cfg)
			}
		}()
	}

feed:
	for i := range contacts {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	batch := BatchResult{Results: results, Duration: c.now().Sub(start)}
	for i := range results {
		if ctx.Err() != nil && results[i].SubscriberKey == "" && results[i].Error == "" {
			// Never dispatched before cancellation.
			results[i] = Result{
				SubscriberKey: contacts[i].SubscriberKey,
				OriginalTime:  contacts[i].EntryTime,
				ErrorCategory: ErrCategoryCanceled,
				Error:         ctx.Err().Error(),
			}
		}
		if results[i].Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	return batch
}
