package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/llm"
	"github.com/smartcourt/smartcourt-engine/pkg/logging"
	"github.com/smartcourt/smartcourt-engine/pkg/secrets"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

const probePreviewChars = 400

// ProbeFlags configures the probe command.
type ProbeFlags struct {
	Question string
}

// NewProbeCommand sends one question to registry models and reports which
// ones answer. It runs without knowledge-base context and saves nothing.
func NewProbeCommand() *cobra.Command {
	f := &ProbeFlags{Question: "ศาลปกครองมีอำนาจพิจารณาคดีประเภทใดบ้าง"}

	cmd := &cobra.Command{
		Use:   "probe [model-key...]",
		Short: "Check that registry models answer",
		Long: `Send one question to each named model (all models when none are named)
and print the answer preview, latency, and estimated cost. Exits non-zero
when any model fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			provider, err := secrets.NewProvider(&cfg.Vault, logger.Named("secrets"))
			if err != nil {
				return err
			}
			// Retrieval credentials are not needed to reach the models.
			if err := secrets.Resolve(cmd.Context(), cfg, provider, logger.Named("secrets")); err != nil {
				if !errors.Is(err, apperrors.ErrMissingSecrets) {
					return err
				}
				logger.Warn("Continuing without required secrets", zap.Error(err))
			}

			keys := args
			if len(keys) == 0 {
				keys = cfg.ModelKeys()
			}
			for _, key := range keys {
				if _, ok := cfg.Model(key); !ok {
					return fmt.Errorf("%w: %s", apperrors.ErrUnknownModel, key)
				}
			}

			clients, err := llm.NewClientFactory(cfg, logger).CreateAll()
			if err != nil {
				return err
			}
			invoker := llm.NewInvoker(cfg, clients, logger)

			out := cmd.OutOrStdout()
			var results []llm.Result
			for _, key := range keys {
				fmt.Fprintf(out, "\n%s\nProbing: %s\n%s\n", strings.Repeat("-", 80), key, strings.Repeat("-", 80))
				ctx := llm.WithCallInfo(cmd.Context(), llm.CallInfo{RequestID: uuid.NewString(), Source: llm.SourceProbe})
				result := invoker.Invoke(ctx, key, f.Question, "", nil, services.DefaultTemperature)
				printProbeResult(out, result)
				results = append(results, result)
			}
			return summarizeProbe(out, results)
		},
	}
	cmd.Flags().StringVarP(&f.Question, "question", "q", f.Question, "Question sent to every model")
	return cmd
}

func printProbeResult(w io.Writer, r llm.Result) {
	fmt.Fprintln(w, logging.TruncateString(r.Answer, probePreviewChars))
	fmt.Fprintf(w, "\nLatency: %.2fs  Cost: %.4f\n", r.Latency, r.Cost)
}

// summarizeProbe prints one line per model and fails when any model failed.
func summarizeProbe(w io.Writer, results []llm.Result) error {
	fmt.Fprintf(w, "\n%s\nSUMMARY\n%s\n", strings.Repeat("=", 80), strings.Repeat("=", 80))

	var failed []string
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r.Model)
			fmt.Fprintf(w, "✗ FAIL: %s (%s)\n", r.Model, r.Err.Type)
			continue
		}
		fmt.Fprintf(w, "✓ PASS: %s\n", r.Model)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d models failed: %s", len(failed), len(results), strings.Join(failed, ", "))
	}
	fmt.Fprintln(w, "\nAll models answered.")
	return nil
}
