package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/testhelpers"
)

func TestCompareService_ValidateModels(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	svc := NewCompareService(cfg, &mockInvoker{}, zap.NewNop())

	selected, err := svc.ValidateModels([]string{"Pathumma", "Typhoon", "Pathumma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pathumma", "Typhoon"}, selected)

	_, err = svc.ValidateModels(nil)
	assert.ErrorIs(t, err, apperrors.ErrNoModels)

	_, err = svc.ValidateModels([]string{"Typhoon", "GPT-X"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownModel)
}

func TestCompareService_ValidateModels_TooMany(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	cfg.Models = nil
	keys := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9"}
	for _, k := range keys {
		cfg.Models = append(cfg.Models, config.ModelConfig{Key: k, Endpoint: "http://llm.test"})
	}
	require.NoError(t, cfg.Validate())
	svc := NewCompareService(cfg, &mockInvoker{}, zap.NewNop())

	_, err := svc.ValidateModels(keys)
	assert.ErrorIs(t, err, apperrors.ErrTooManyModels)

	selected, err := svc.ValidateModels(keys[:8])
	require.NoError(t, err)
	assert.Len(t, selected, 8)
}

func TestCompareService_Compare_SelectionOrderAndCompletionCallbacks(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	delays := map[string]time.Duration{
		"Typhoon":     100 * time.Millisecond,
		"OpenThaiGPT": 50 * time.Millisecond,
		"Pathumma":    0,
	}
	invoker := &mockInvoker{invokeFunc: func(modelKey string) llm.Result {
		time.Sleep(delays[modelKey])
		return llm.Result{Model: modelKey, Answer: "ok " + modelKey}
	}}
	svc := NewCompareService(cfg, invoker, zap.NewNop())

	var mu sync.Mutex
	var completionOrder []string
	results, err := svc.Compare(context.Background(), []string{"Typhoon", "OpenThaiGPT", "Pathumma"},
		"q", "ctx", nil, 0.3, func(r llm.Result, completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			completionOrder = append(completionOrder, r.Model)
			assert.Equal(t, 3, total)
		})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "Typhoon", results[0].Model)
	assert.Equal(t, "OpenThaiGPT", results[1].Model)
	assert.Equal(t, "Pathumma", results[2].Model)
	assert.Equal(t, []string{"Pathumma", "OpenThaiGPT", "Typhoon"}, completionOrder)
}

func TestCompareService_Compare_RunsConcurrently(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	invoker := &mockInvoker{invokeFunc: func(modelKey string) llm.Result {
		time.Sleep(150 * time.Millisecond)
		return llm.Result{Model: modelKey}
	}}
	svc := NewCompareService(cfg, invoker, zap.NewNop())

	start := time.Now()
	results, err := svc.Compare(context.Background(), cfg.ModelKeys(), "q", "", nil, 0.3, nil)
	require.NoError(t, err)

	assert.Len(t, results, 3)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "three 150ms calls should overlap")
}

func TestCompareService_Compare_FailureIsData(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	invoker := &mockInvoker{invokeFunc: func(modelKey string) llm.Result {
		if modelKey == "OpenThaiGPT" {
			return llm.Result{
				Model:  modelKey,
				Answer: llm.ErrorAnswerPrefix + "API Error: 500 - boom",
				Err:    llm.NewError(llm.ErrorTypeEndpoint, "server error", errors.New("boom")),
			}
		}
		return llm.Result{Model: modelKey, Answer: "fine"}
	}}
	svc := NewCompareService(cfg, invoker, zap.NewNop())

	results, err := svc.Compare(context.Background(), []string{"Typhoon", "OpenThaiGPT"}, "q", "", nil, 0.3, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, "⚠️ Error: API Error: 500 - boom", results[1].Answer)
}

func TestCompareService_Compare_IgnoresCallerCancellation(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	invoker := &mockInvoker{}
	svc := NewCompareService(cfg, invoker, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.Compare(ctx, []string{"Typhoon", "Pathumma"}, "q", "", nil, 0.3, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Failed())
	}
}

func TestCompareService_Compare_RejectsUnknownBeforeDispatch(t *testing.T) {
	cfg := testhelpers.TestConfig(t, "http://llm.test")
	invoker := &mockInvoker{}
	svc := NewCompareService(cfg, invoker, zap.NewNop())

	_, err := svc.Compare(context.Background(), []string{"Typhoon", "Nope"}, "q", "", nil, 0.3, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownModel)
	assert.Empty(t, invoker.invoked)
}
