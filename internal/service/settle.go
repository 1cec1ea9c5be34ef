package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/restaurant-ecommerce/notification-service/internal/domain"
)

// dispatch is one independently failing unit of a fan-out.
type dispatch struct {
	name    string
	channel domain.Channel
	run     func(ctx context.Context) []domain.ChannelResult
}

// settleAll starts every dispatch before waiting on any and returns their
// results in dispatch order. One dispatch failing, panicking or hanging never
// affects the others.
func settleAll(ctx context.Context, timeout time.Duration, tasks []dispatch) [][]domain.ChannelResult {
	out := make([][]domain.ChannelResult, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t dispatch) {
			defer wg.Done()
			out[i] = runBounded(ctx, timeout, t)
		}(i, t)
	}
	wg.Wait()

	return out
}

// settleGrace is how long a dispatch may take to report after its deadline.
// Adapters return promptly once their context ends, and their partial results
// record the sends that already went out.
var settleGrace = 250 * time.Millisecond

// runBounded runs t under its own deadline. A dispatch still running
// settleGrace after the deadline is abandoned and reported as a timeout.
func runBounded(parent context.Context, timeout time.Duration, t dispatch) []domain.ChannelResult {
	ctx, cancel := withTimeout(parent, timeout)
	defer cancel()

	done := make(chan []domain.ChannelResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- []domain.ChannelResult{
					domain.FromError(t.channel, "", fmt.Errorf("%s panicked: %v", t.name, r)),
				}
			}
		}()
		done <- t.run(ctx)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
	}

	grace := time.NewTimer(settleGrace)
	defer grace.Stop()
	select {
	case res := <-done:
		return res
	case <-grace.C:
		return []domain.ChannelResult{
			domain.FromError(t.channel, "", fmt.Errorf("%s: %w", t.name, ctx.Err())),
		}
	}
}

func withTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
