package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
	"github.com/smartcourt/smartcourt-engine/pkg/config"
	"github.com/smartcourt/smartcourt-engine/pkg/models"
	"github.com/smartcourt/smartcourt-engine/pkg/repositories"
)

// utf8BOM lets spreadsheet applications detect UTF-8 (Thai) text.
const utf8BOM = "\ufeff"

// TimestampLayout is how timestamps appear in exports.
const TimestampLayout = "2006-01-02 15:04:05"

// HistoryCSVHeader is the column order of the history export.
var HistoryCSVHeader = []string{"Timestamp", "Question", "Model", "Answer", "Cost", "Suggested Correct Answer"}

// ReportCSVHeader is the column order of the admin feedback report.
var ReportCSVHeader = []string{
	"conversation_id", "username", "question", "model_name",
	"score_accuracy", "score_completeness", "score_detail", "score_usefulness", "score_satisfaction",
	"feedback_comment", "timestamp", "User_Role", "User_Level", "User_Agency",
}

// ExportService renders conversations as CSV and PDF documents.
type ExportService interface {
	// HistoryCSV writes every conversation of the user, one row per response.
	HistoryCSV(ctx context.Context, w io.Writer, username string) error
	// ReportCSV writes the admin feedback log with parsed demographics.
	ReportCSV(ctx context.Context, w io.Writer) error
	// ConversationPDF writes one conversation owned by username.
	ConversationPDF(ctx context.Context, w io.Writer, conversationID int64, username string) error
	// WritePDF renders an already loaded conversation.
	WritePDF(w io.Writer, conv *models.Conversation) error
}

type exportService struct {
	cfg       *config.ExportConfig
	convRepo  repositories.ConversationRepository
	analytics AnalyticsService
	logger    *zap.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(
	cfg *config.ExportConfig,
	convRepo repositories.ConversationRepository,
	analytics AnalyticsService,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		cfg:       cfg,
		convRepo:  convRepo,
		analytics: analytics,
		logger:    logger.Named("export"),
	}
}

var _ ExportService = (*exportService)(nil)

func (s *exportService) HistoryCSV(ctx context.Context, w io.Writer, username string) error {
	if username == "" {
		return apperrors.ErrEmptyUsername
	}
	convs, err := s.convRepo.ListByUser(ctx, username, 0, "")
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(HistoryCSVHeader); err != nil {
		return err
	}
	for _, conv := range convs {
		for _, resp := range conv.Responses {
			if err := cw.Write([]string{
				conv.Timestamp.Format(TimestampLayout),
				conv.Question,
				resp.ModelName,
				resp.Answer,
				strconv.FormatFloat(resp.Cost, 'f', -1, 64),
				conv.Comment(),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) ReportCSV(ctx context.Context, w io.Writer) error {
	log, err := s.analytics.FeedbackLog(ctx, FeedbackLogLimit)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportCSVHeader); err != nil {
		return err
	}
	for _, e := range log {
		comment := ""
		if e.FeedbackComment != nil {
			comment = *e.FeedbackComment
		}
		if err := cw.Write([]string{
			strconv.FormatInt(e.ConversationID, 10),
			e.Username,
			e.Question,
			e.ModelName,
			strconv.Itoa(e.ScoreAccuracy),
			strconv.Itoa(e.ScoreCompleteness),
			strconv.Itoa(e.ScoreDetail),
			strconv.Itoa(e.ScoreUsefulness),
			strconv.Itoa(e.ScoreSatisfaction),
			comment,
			e.Timestamp.Format(TimestampLayout),
			e.UserRole,
			e.UserLevel,
			e.UserAgency,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) ConversationPDF(ctx context.Context, w io.Writer, conversationID int64, username string) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Username != username {
		return apperrors.ErrForbidden
	}
	return s.WritePDF(w, conv)
}

const pdfFontFamily = "body"

func (s *exportService) WritePDF(w io.Writer, conv *models.Conversation) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)

	// Core fonts only cover Latin-1; a configured TTF is needed for Thai text.
	family := "Helvetica"
	text := pdf.UnicodeTranslatorFromDescriptor("")
	bold := "B"
	if s.cfg.PDFFontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", s.cfg.PDFFontPath)
		family = pdfFontFamily
		text = func(s string) string { return s }
		bold = ""
	}

	pdf.AddPage()

	pdf.SetFont(family, bold, 16)
	pdf.MultiCell(0, 9, text(s.cfg.Title), "", "C", false)
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	pdf.MultiCell(0, 6, text("Timestamp: "+conv.Timestamp.Format(TimestampLayout)), "", "L", false)
	pdf.MultiCell(0, 6, text("Question: "+conv.Question), "", "L", false)
	pdf.Ln(4)

	for _, resp := range conv.Responses {
		pdf.SetFont(family, bold, 13)
		pdf.MultiCell(0, 7, text("Model: "+resp.ModelName), "", "L", false)
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, text(resp.Answer), "", "L", false)
		pdf.Ln(3)
	}

	if comment := conv.Comment(); comment != "" {
		pdf.Ln(4)
		pdf.SetFont(family, bold, 12)
		pdf.MultiCell(0, 7, text("Recommended / Corrected Answer:"), "", "L", false)
		pdf.SetFont(family, "", 11)
		pdf.MultiCell(0, 6, text(comment), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf for conversation %d: %w", conv.ID, err)
	}
	s.logger.Debug("Conversation exported to PDF",
		zap.Int64("conversation_id", conv.ID),
		zap.Int("responses", len(conv.Responses)))
	return nil
}
