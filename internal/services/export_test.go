package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/Attentive/internal/models"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	return r.ReadAll()
}

func TestExportLongCSV(t *testing.T) {
	rows := []LongRow{
		{TestType: "memory", Number: 1, ResponseTime: 1.5, Correct: true, Answer: "A", RecordedAt: "2024-01-01T00:00:00Z"},
		{TestType: "memory", Number: 2, ResponseTime: 2, Correct: false, Answer: `[1,2]`, RecordedAt: "2024-01-01T00:00:10Z"},
		{TestType: "logic", Number: 1, ResponseTime: 0.25, Correct: true, Answer: "", RecordedAt: "2024-01-02T00:00:00Z"},
	}
	b, err := ExportLongCSV(rows)
	if err != nil {
		t.Fatalf("export long: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 1+len(rows) {
		t.Fatalf("want %d rows, got %d", 1+len(rows), len(recs))
	}
	if got := strings.Join(recs[0], ","); got != "test_type,question_number,response_time,correct,answer,recorded_at" {
		t.Fatalf("bad header: %s", got)
	}
	if got := strings.Join(recs[2], "|"); got != "memory|2|2|false|[1,2]|2024-01-01T00:00:10Z" {
		t.Fatalf("bad row: %s", got)
	}
}

func TestExportHistoryCSV(t *testing.T) {
	rows := []SessionSummary{
		{ID: "s2", Date: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Scores: models.Scores{Memory: 20, Attention: 18, Perception: 15, Logic: 12}, TotalScore: 65, Level: "Moderate ADHD indicators", Completed: true},
		{ID: "s1", Date: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Scores: models.Scores{Memory: 5}},
	}
	b, err := ExportHistoryCSV(rows)
	if err != nil {
		t.Fatalf("export history: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("rows mismatch: %d", len(recs))
	}
	if recs[1][0] != "s2" || recs[1][6] != "65" || recs[1][7] != "Moderate ADHD indicators" || recs[1][8] != "true" {
		t.Fatalf("s2 wrong: %v", recs[1])
	}
	if recs[2][7] != "" || recs[2][8] != "false" {
		t.Fatalf("open session wrong: %v", recs[2])
	}
}
