package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

type LongRow struct {
	TestType     string
	Number       int
	ResponseTime float64
	Correct      bool
	Answer       string
	RecordedAt   string // RFC3339
}

// ExportLongCSV renders the per-question response log, one row per answer.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"test_type", "question_number", "response_time", "correct", "answer", "recorded_at"})
	for _, r := range rows {
		rec := []string{
			r.TestType,
			strconv.Itoa(r.Number),
			strconv.FormatFloat(r.ResponseTime, 'f', -1, 64),
			strconv.FormatBool(r.Correct),
			r.Answer,
			r.RecordedAt,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportHistoryCSV renders one row per session with its category scores,
// total and tier. Open sessions are included with an empty tier.
func ExportHistoryCSV(rows []SessionSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"session_id", "session_date", "memory", "attention", "perception", "logic", "total_score", "assessment_level", "completed"})
	for _, r := range rows {
		rec := []string{
			r.ID,
			r.Date.UTC().Format(time.RFC3339),
			strconv.Itoa(r.Scores.Memory),
			strconv.Itoa(r.Scores.Attention),
			strconv.Itoa(r.Scores.Perception),
			strconv.Itoa(r.Scores.Logic),
			strconv.Itoa(r.TotalScore),
			r.Level,
			strconv.FormatBool(r.Completed),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
