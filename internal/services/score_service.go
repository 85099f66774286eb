package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/soaringjerry/Attentive/internal/models"
)

// ScoreStore abstracts persistence operations required by ScoreService.
type ScoreStore interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SaveCategoryResult(ctx context.Context, sessionID string, c models.Category, score int, rows []*models.QuestionResponse) (bool, error)
	ListResponses(ctx context.Context, sessionID string) ([]*models.QuestionResponse, error)
}

// ResponseInput mirrors one element of the submitted responses array.
// Time and Correct are trusted as sent by the client.
type ResponseInput struct {
	Time    float64         `json:"time"`
	Correct bool            `json:"correct"`
	Answer  json.RawMessage `json:"answer,omitempty"`
}

// SubmitRequest is the category result payload posted by a test page.
type SubmitRequest struct {
	TestType  string          `json:"test_type"`
	Score     int             `json:"score"`
	Responses []ResponseInput `json:"responses"`
}

type SubmitResult struct {
	Success bool `json:"success"`
	Score   int  `json:"score"`
}

// ScoreService records category results and the per-question response log.
type ScoreService struct {
	store  ScoreStore
	now    func() time.Time
	logger *slog.Logger
}

func NewScoreService(store ScoreStore) *ScoreService {
	return &ScoreService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}
}

// SubmitResult records a category result into the actor's active session.
func (s *ScoreService) SubmitResult(ctx context.Context, actor Actor, req SubmitRequest) (*SubmitResult, error) {
	id, ok, err := actor.Slot.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, noActiveSession()
	}
	if err := s.RecordCategoryResult(ctx, id, req.TestType, req.Score, req.Responses); err != nil {
		return nil, err
	}
	return &SubmitResult{Success: true, Score: req.Score}, nil
}

// RecordCategoryResult overwrites the stored score of one category and
// appends one response row per element of responses, numbered from 1.
// Resubmitting replaces the score but keeps earlier response rows.
func (s *ScoreService) RecordCategoryResult(ctx context.Context, sessionID, testType string, score int, responses []ResponseInput) (err error) {
	ctx, span := startSpan(ctx, "ScoreService.RecordCategoryResult",
		attribute.String("session.id", sessionID), attribute.String("test.type", testType))
	defer func() { endSpan(span, err) }()

	c, ok := models.ParseCategory(testType)
	if !ok {
		return invalidCategory()
	}
	if score < 0 || score > models.MaxCategoryScore {
		return invalidScore()
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return invalidSession()
	}
	if sess.Completed {
		return sessionCompleted()
	}

	now := s.now()
	rows := make([]*models.QuestionResponse, 0, len(responses))
	for i, r := range responses {
		rows = append(rows, &models.QuestionResponse{
			SessionID:    sessionID,
			Category:     c,
			Number:       i + 1,
			ResponseTime: r.Time,
			Correct:      r.Correct,
			Answer:       answerText(r.Answer),
			RecordedAt:   now,
		})
	}
	found, err := s.store.SaveCategoryResult(ctx, sessionID, c, score, rows)
	if err != nil {
		return err
	}
	if !found {
		// Finalized (or removed) between the check above and the write.
		cur, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if cur != nil && cur.Completed {
			return sessionCompleted()
		}
		return invalidSession()
	}
	s.logger.InfoContext(ctx, "category result recorded",
		"session_id", sessionID, "category", string(c), "score", score, "responses", len(rows))
	return nil
}

// CategoryScores returns the four scores of a session; unrecorded
// categories read as zero.
func (s *ScoreService) CategoryScores(ctx context.Context, sessionID string) (models.Scores, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return models.Scores{}, err
	}
	if sess == nil {
		return models.Scores{}, invalidSession()
	}
	return sess.Scores, nil
}

// Responses lists the response log of a session in insertion order.
func (s *ScoreService) Responses(ctx context.Context, sessionID string) ([]*models.QuestionResponse, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, invalidSession()
	}
	return s.store.ListResponses(ctx, sessionID)
}

// answerText coerces an arbitrary JSON answer into its text form: strings
// are unquoted, null or missing becomes empty, anything else is kept as
// compact JSON.
func answerText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var sval string
		if err := json.Unmarshal(trimmed, &sval); err == nil {
			return sval
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return strings.TrimSpace(string(trimmed))
	}
	return buf.String()
}
