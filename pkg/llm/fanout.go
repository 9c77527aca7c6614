package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// CallFunc produces one model's result. It must not return until the call
// has finished or timed out.
type CallFunc func(ctx context.Context, modelKey string) Result

// ProgressFunc observes each result as it lands.
type ProgressFunc func(result Result, completed, total int)

type indexedResult struct {
	index  int
	result Result
}

// FanOut calls every model at once, one goroutine per key, so no call waits
// for a slot. onResult runs on the calling goroutine in completion order.
// The returned slice follows keys order and has exactly one entry per key.
// A call that panics yields an error result instead of crashing the turn.
func FanOut(ctx context.Context, keys []string, call CallFunc, onResult ProgressFunc, logger *zap.Logger) []Result {
	if len(keys) == 0 {
		return nil
	}

	landed := make(chan indexedResult, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			landed <- indexedResult{index: i, result: safeCall(ctx, key, call, logger)}
		}()
	}
	go func() {
		wg.Wait()
		close(landed)
	}()

	ordered := make([]Result, len(keys))
	completed := 0
	for r := range landed {
		r.result.Model = keys[r.index]
		ordered[r.index] = r.result
		completed++
		if onResult != nil {
			onResult(r.result, completed, len(keys))
		}
	}
	return ordered
}

func safeCall(ctx context.Context, key string, call CallFunc, logger *zap.Logger) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Model call panicked", zap.String("model", key), zap.Any("panic", p))
			err := NewError(ErrorTypeUnknown, fmt.Sprintf("panic: %v", p), nil)
			err.Model = key
			result = Result{Model: key, Answer: ErrorAnswerPrefix + err.Detail(), Err: err}
		}
	}()
	return call(ctx, key)
}
