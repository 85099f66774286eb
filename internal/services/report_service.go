package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soaringjerry/Attentive/internal/models"
)

const reportTitle = "ADHD Assessment Report"

type ReportStore interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ReportRow is one line of the score table, already formatted.
type ReportRow struct {
	Label      string `json:"label"`
	Score      string `json:"score"`
	Percentage string `json:"percentage"`
}

// Report is a rendered document ready to be sent as an attachment.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// ReportTable builds the four category rows plus the total row. The total
// percentage is the total itself since it is already on a /100 scale.
func ReportTable(sess *models.Session) []ReportRow {
	rows := make([]ReportRow, 0, len(models.Categories)+1)
	for _, c := range models.Categories {
		v := sess.Scores.Get(c)
		rows = append(rows, ReportRow{
			Label:      c.Title() + " Test",
			Score:      fmt.Sprintf("%d", v),
			Percentage: fmt.Sprintf("%.1f%%", float64(v)/models.MaxCategoryScore*100),
		})
	}
	rows = append(rows, ReportRow{
		Label:      "Total Score",
		Score:      fmt.Sprintf("%d out of %d", sess.TotalScore, models.MaxTotalScore),
		Percentage: fmt.Sprintf("%d%%", sess.TotalScore),
	})
	return rows
}

// RenderReport produces the PDF report of a completed session. A session
// that is missing or owned by someone else yields the same AccessDenied.
func (s *ReportService) RenderReport(ctx context.Context, sessionID, requesterID string) (rep *Report, err error) {
	ctx, span := startSpan(ctx, "ReportService.RenderReport", attribute.String("session.id", sessionID))
	defer func() { endSpan(span, err) }()

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != requesterID {
		return nil, accessDenied()
	}
	if !sess.Completed {
		return nil, reportNotReady()
	}
	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, accessDenied()
	}
	body, err := renderPDF(user, sess)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return &Report{
		Filename:    ReportFilename(user.Name, sess.CreatedAt),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}

// ReportFilename embeds the user's name and the session date.
func ReportFilename(name string, date time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if safe == "" {
		safe = "user"
	}
	return fmt.Sprintf("ADHD_Report_%s_%s.pdf", safe, date.UTC().Format("2006-01-02"))
}

func renderPDF(user *models.User, sess *models.Session) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	// Pin document metadata so identical sessions render identical bytes.
	pdf.SetCreationDate(sess.CreatedAt.UTC())
	pdf.SetModificationDate(sess.CreatedAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetTitle(reportTitle, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, reportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Name: " + user.Name,
		fmt.Sprintf("Age: %d", user.Age),
		"Date: " + sess.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	} {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{60, 60, 50}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for i, h := range []string{"Test Type", "Score (out of 25)", "Percentage"} {
		pdf.CellFormat(widths[i], 12, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range ReportTable(sess) {
		for i, cell := range []string{row.Label, row.Score, row.Percentage} {
			pdf.CellFormat(widths[i], 9, cell, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Assessment Level: "+sess.Level), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
