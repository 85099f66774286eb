package services

import (
	"context"
	"sort"
	"time"

	"github.com/soaringjerry/Attentive/internal/models"
)

type HistoryStore interface {
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListResponses(ctx context.Context, sessionID string) ([]*models.QuestionResponse, error)
}

// SessionSummary is one row of the dashboard history.
type SessionSummary struct {
	ID         string        `json:"id"`
	Date       time.Time     `json:"session_date"`
	Scores     models.Scores `json:"scores"`
	TotalScore int           `json:"total_score"`
	Level      string        `json:"assessment_level,omitempty"`
	Color      string        `json:"color,omitempty"`
	Completed  bool          `json:"completed"`
}

type HistoryService struct {
	store HistoryStore
}

func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// History lists the user's sessions, newest first.
func (s *HistoryService) History(ctx context.Context, userID string) ([]SessionSummary, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		row := SessionSummary{
			ID:         sess.ID,
			Date:       sess.CreatedAt,
			Scores:     sess.Scores,
			TotalScore: sess.TotalScore,
			Level:      sess.Level,
			Completed:  sess.Completed,
		}
		if a, ok := TierByLabel(sess.Level); ok {
			row.Color = a.Color
		}
		out = append(out, row)
	}
	return out, nil
}

// ExportResponses renders the response log of a session owned by
// requesterID as long-format CSV.
func (s *HistoryService) ExportResponses(ctx context.Context, sessionID, requesterID string) ([]byte, string, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if sess == nil || sess.UserID != requesterID {
		return nil, "", accessDenied()
	}
	rs, err := s.store.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	rows := make([]LongRow, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, LongRow{
			TestType:     string(r.Category),
			Number:       r.Number,
			ResponseTime: r.ResponseTime,
			Correct:      r.Correct,
			Answer:       r.Answer,
			RecordedAt:   r.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	b, err := ExportLongCSV(rows)
	if err != nil {
		return nil, "", err
	}
	return b, "responses_" + sess.CreatedAt.UTC().Format("2006-01-02") + ".csv", nil
}
