// Package async runs independent named tasks on a bounded set of workers.
package async

import (
	"context"
	"fmt"
	"sync"
)

type Task struct {
	Name    string
	Execute func() (any, error)
}

type Result struct {
	Name string
	Data any
	Err  error
}

// Pool is safe to reuse; every Execute call gets its own channels.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				return
			}
			data, err := task.Execute()
			results <- Result{Name: task.Name, Data: data, Err: err}
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs every task and returns results keyed by task name. Tasks that
// did not finish before ctx was cancelled are reported with ctx's error.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var wg sync.WaitGroup
	taskCh := make(chan Task)
	// Buffered so workers never block on a caller that stopped collecting.
	resultCh := make(chan Result, len(tasks))
	results := make(map[string]Result, len(tasks))

	workers := min(p.workerCount, len(tasks))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, taskCh, resultCh, &wg)
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	for len(results) < len(tasks) {
		select {
		case result := <-resultCh:
			results[result.Name] = result
		case <-ctx.Done():
			for _, task := range tasks {
				if _, done := results[task.Name]; !done {
					results[task.Name] = Result{Name: task.Name, Err: fmt.Errorf("task %s: %w", task.Name, ctx.Err())}
				}
			}
			return results
		}
	}

	wg.Wait()
	return results
}

// FirstError returns the first failed result in task order, or nil.
func FirstError(tasks []Task, results map[string]Result) error {
	for _, task := range tasks {
		if result, ok := results[task.Name]; ok && result.Err != nil {
			return fmt.Errorf("%s: %w", task.Name, result.Err)
		}
	}
	return nil
}
