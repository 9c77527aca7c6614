package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/database"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
	"github.com/smartcourt/smartcourt-engine/pkg/services"
)

// ExportFlags configures the export subcommands.
type ExportFlags struct {
	Output         string
	Username       string
	ConversationID int64
}

// NewExportCommand writes CSV and PDF exports without running the server.
func NewExportCommand() *cobra.Command {
	f := &ExportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history, the feedback report, or one conversation",
	}
	cmd.PersistentFlags().StringVarP(&f.Output, "output", "o", "-", "Output file (- for stdout)")

	history := &cobra.Command{
		Use:   "history",
		Short: "Export a user's conversations as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, f, func(ctx context.Context, svc services.ExportService, w io.Writer) error {
				return svc.HistoryCSV(ctx, w, f.Username)
			})
		},
	}
	history.Flags().StringVar(&f.Username, "user", "", "Display name whose history is exported")
	_ = history.MarkFlagRequired("user")

	report := &cobra.Command{
		Use:   "report",
		Short: "Export the feedback report as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, f, func(ctx context.Context, svc services.ExportService, w io.Writer) error {
				return svc.ReportCSV(ctx, w)
			})
		},
	}

	pdf := &cobra.Command{
		Use:   "pdf",
		Short: "Export one conversation as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, f, func(ctx context.Context, svc services.ExportService, w io.Writer) error {
				return svc.ConversationPDF(ctx, w, f.ConversationID, f.Username)
			})
		},
	}
	pdf.Flags().StringVar(&f.Username, "user", "", "Display name that owns the conversation")
	pdf.Flags().Int64Var(&f.ConversationID, "id", 0, "Conversation ID")
	_ = pdf.MarkFlagRequired("user")
	_ = pdf.MarkFlagRequired("id")

	cmd.AddCommand(history, report, pdf)
	return cmd
}

type exportFunc func(ctx context.Context, svc services.ExportService, w io.Writer) error

func runExport(cmd *cobra.Command, f *ExportFlags, export exportFunc) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	convRepo := repositories.NewConversationRepository(db)
	analyticsService := services.NewAnalyticsService(repositories.NewAnalyticsRepository(db), logger)
	exportService := services.NewExportService(&cfg.Export, convRepo, analyticsService, logger)

	if f.Output == "-" {
		return export(cmd.Context(), exportService, cmd.OutOrStdout())
	}

	out, err := os.Create(f.Output)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Output, err)
	}
	if err := export(cmd.Context(), exportService, out); err != nil {
		_ = out.Close()
		_ = os.Remove(f.Output)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.Output, err)
	}
	logger.Info("Export written", zap.String("path", f.Output))
	return nil
}
