package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smartcourt/smartcourt-engine/pkg/llm"
)

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn", "production")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = newLogger("debug", "local")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", "local")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, Version+"\n", out.String())
}

func TestExportCommand_Subcommands(t *testing.T) {
	cmd := NewExportCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.Equal(t, map[string]bool{"history": true, "report": true, "pdf": true}, names)

	pdf, _, err := cmd.Find([]string{"pdf"})
	require.NoError(t, err)
	assert.NotNil(t, pdf.Flags().Lookup("id"))
	assert.NotNil(t, pdf.Flags().Lookup("user"))
}

func TestSummarizeProbe(t *testing.T) {
	var out bytes.Buffer
	err := summarizeProbe(&out, []llm.Result{
		{Model: "Typhoon", Answer: "ok"},
		{Model: "Pathumma", Answer: llm.ErrorAnswerPrefix + "timeout", Err: &llm.Error{Type: llm.ErrorTypeTimeout}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 models failed: Pathumma")
	assert.Contains(t, out.String(), "✓ PASS: Typhoon")
	assert.Contains(t, out.String(), "✗ FAIL: Pathumma (timeout)")

	out.Reset()
	require.NoError(t, summarizeProbe(&out, []llm.Result{{Model: "Typhoon", Answer: "ok"}}))
	assert.Contains(t, out.String(), "All models answered.")
}
