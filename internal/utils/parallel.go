package utils

import (
	"sync"
)

// ParallelMap 使用最多 workers 个协程并发处理 items，结果顺序与输入一致。
// 元素数量不超过 1 或 workers <= 1 时直接在当前协程中顺序处理。
func ParallelMap[T any, R any](items []T, workers int, fn func(T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	if len(items) == 1 || workers <= 1 {
		for i, item := range items {
			results[i] = fn(item)
		}
		return results
	}

	workers = min(workers, len(items))
	indexCh := make(chan int, len(items))
	for i := range items {
		indexCh <- i
	}
	close(indexCh)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexCh {
				results[i] = fn(items[i])
			}
		}()
	}
	wg.Wait()
	return results
}
