// Package fanout runs request-scoped parallel work and joins it in input order.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn once per item, concurrently, and returns the results in the
// same order as items. Each goroutine writes only its own slot, so no locking
// is needed. fn is expected to absorb its own failures; Map itself never
// fails and waits for every call to return.
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, i int, item T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			out[i] = fn(ctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
