// Package executor runs task batches under a fixed concurrency limit.
package executor

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work producing a T.
type Task[T any] func(ctx context.Context) (T, error)

// Run executes tasks with at most limit in flight and returns results
// aligned to the input order, not completion order. Tasks are admitted in
// input order as slots free up. limit <= 0 means no limit.
//
// A failing task does not stop its siblings. Every task error is returned,
// joined, and prefixed with the task index; the failed slot keeps T's zero value.
func Run[T any](ctx context.Context, limit int, tasks []Task[T]) ([]T, error) {
	results := make([]T, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	errs := make([]error, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			res, err := task(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("task %d: %w", i, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
