package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/logging"
	"github.com/smartcourt/smartcourt-engine/pkg/metrics"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/prompts"
)

// ErrorAnswerPrefix marks an answer that is an error description.
const ErrorAnswerPrefix = "⚠️ Error: "

// Result is one model's metered answer. Failures are data: Answer carries the
// error text and Err the structured cause.
type Result struct {
	Model     string             `json:"model"`
	Answer    string             `json:"answer"`
	Citations []models.Citation  `json:"citations"`
	Cost      float64            `json:"cost"`
	Latency   float64            `json:"latency"` // seconds
	Config    config.ModelConfig `json:"config"`
	Err       *Error             `json:"-"`
}

// Failed reports whether the call produced an error answer.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Invoker calls registry models and meters each call.
type Invoker struct {
	cfg     *config.Config
	clients map[string]ChatClient
	logger  *zap.Logger
}

// NewInvoker creates an invoker over one client per registry key.
func NewInvoker(cfg *config.Config, clients map[string]ChatClient, logger *zap.Logger) *Invoker {
	return &Invoker{
		cfg:     cfg,
		clients: clients,
		logger:  logger.Named("invoker"),
	}
}

// BuildInput combines the system prompt, retrieved context, and question into
// the single user message sent to every model.
func (i *Invoker) BuildInput(prompt, retrievedContext string) string {
	return prompts.BuildAnswerInput(i.cfg.Invocation.SystemPrompt, retrievedContext, prompt)
}

// Invoke calls one model and never returns an error: a failed call yields a
// Result whose Answer is the error text. Latency covers the whole call and
// cost is computed from the combined input and the final answer text.
func (i *Invoker) Invoke(
	ctx context.Context,
	modelKey string,
	prompt string,
	retrievedContext string,
	citations []models.Citation,
	temperature float64,
) Result {
	if citations == nil {
		citations = []models.Citation{}
	}
	input := i.BuildInput(prompt, retrievedContext)

	start := time.Now()
	raw, err := i.complete(ctx, modelKey, CompletionRequest{
		Prompt:      input,
		MaxTokens:   i.cfg.Invocation.MaxTokens,
		Temperature: temperature,
	}, i.cfg.Invocation.Timeout())
	latency := time.Since(start).Seconds()

	result := Result{
		Model:     modelKey,
		Citations: citations,
		Latency:   latency,
	}
	if model, ok := i.cfg.Model(modelKey); ok {
		result.Config = model
	}

	if err != nil {
		result.Err = ClassifyError(err)
		result.Err.Model = modelKey
		result.Answer = ErrorAnswerPrefix + result.Err.Detail()
	} else {
		result.Answer = StripThinkBlocks(raw)
	}

	price, priced := i.cfg.PriceFor(result.Config)
	if !priced {
		i.logger.Debug("No pricing entry for model; cost is zero",
			zap.String("model", modelKey),
			zap.String("pricing_key", result.Config.EffectivePricingKey()))
	}
	result.Cost = EstimateCost(input, result.Answer, price, i.cfg.Invocation.CharsPerToken, i.cfg.Invocation.CurrencyRate)

	errType := ""
	if result.Err != nil {
		errType = string(result.Err.Type)
		fields := append([]zap.Field{
			zap.String("model", modelKey),
			zap.String("error_type", errType),
			zap.Float64("latency_sec", latency),
			zap.String("error", logging.RedactSecrets(logging.SanitizeError(result.Err), i.secretValues()...)),
		}, CallInfoFrom(ctx).Fields()...)
		i.logger.Warn("Model invocation failed", fields...)
	} else {
		fields := append([]zap.Field{
			zap.String("model", modelKey),
			zap.Float64("latency_sec", latency),
			zap.Float64("cost", result.Cost),
			zap.Int("answer_len", len([]rune(result.Answer))),
		}, CallInfoFrom(ctx).Fields()...)
		i.logger.Info("Model invocation completed", fields...)
	}
	metrics.ObserveInvocation(modelKey, latency, result.Cost, errType)

	return result
}

// Complete calls one model with an explicit token limit and timeout and
// returns the answer with reasoning blocks removed.
func (i *Invoker) Complete(ctx context.Context, modelKey, prompt string, maxTokens int, temperature float64, timeout time.Duration) (string, error) {
	raw, err := i.complete(ctx, modelKey, CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, timeout)
	if err != nil {
		return "", err
	}
	return StripThinkBlocks(raw), nil
}

func (i *Invoker) complete(ctx context.Context, modelKey string, req CompletionRequest, timeout time.Duration) (string, error) {
	model, ok := i.cfg.Model(modelKey)
	if !ok {
		return "", NewErrorWithContext(ErrorTypeConfig, fmt.Sprintf("model %q is not configured", modelKey), nil, modelKey, "", 0)
	}
	if i.cfg.Secrets.Get(model.APIKeyName) == "" {
		return "", NewErrorWithContext(ErrorTypeConfig, model.APIKeyName+" missing", nil, modelKey, model.Endpoint, 0)
	}
	client, ok := i.clients[modelKey]
	if !ok || client == nil {
		return "", NewErrorWithContext(ErrorTypeConfig, fmt.Sprintf("no client for model %q", modelKey), nil, modelKey, model.Endpoint, 0)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return client.Complete(ctx, req)
}

func (i *Invoker) secretValues() []string {
	values := make([]string, 0, len(config.SecretNames))
	for _, name := range config.SecretNames {
		values = append(values, i.cfg.Secrets.Get(name))
	}
	return values
}
