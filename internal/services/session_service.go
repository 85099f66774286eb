package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soaringjerry/Attentive/internal/models"
)

// AssessmentResult is what finalization hands back for immediate display.
type AssessmentResult struct {
	SessionID  string        `json:"session_id"`
	Scores     models.Scores `json:"scores"`
	TotalScore int           `json:"total_score"`
	Assessment
}

// SessionService owns the lifecycle of assessment sessions: start, the
// per-user active slot, and the one-way finalization.
type SessionService struct {
	store  SessionStore
	now    func() time.Time
	idGen  func() string
	logger *slog.Logger
}

func NewSessionService(store SessionStore) *SessionService {
	return &SessionService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		idGen:  uuid.NewString,
		logger: slog.Default(),
	}
}

// StartSession creates a fresh session and points the actor's slot at it.
// An already active session is abandoned as-is: last start wins.
func (s *SessionService) StartSession(ctx context.Context, actor Actor) (id string, err error) {
	ctx, span := startSpan(ctx, "SessionService.StartSession", attribute.String("user.id", actor.UserID))
	defer func() { endSpan(span, err) }()

	sess := &models.Session{ID: s.idGen(), UserID: actor.UserID, CreatedAt: s.now()}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	if prev, ok, err := actor.Slot.Get(ctx); err == nil && ok {
		s.logger.InfoContext(ctx, "abandoning active session", "user_id", actor.UserID, "session_id", prev)
	}
	if err := actor.Slot.Set(ctx, sess.ID); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "session started", "user_id", actor.UserID, "session_id", sess.ID)
	return sess.ID, nil
}

// ActiveSession returns the session id currently held in the actor's slot.
func (s *SessionService) ActiveSession(ctx context.Context, actor Actor) (string, bool, error) {
	return actor.Slot.Get(ctx)
}

// ClearActiveSession detaches the slot without touching the session record.
func (s *SessionService) ClearActiveSession(ctx context.Context, actor Actor) error {
	return actor.Slot.Clear(ctx)
}

// CompleteAssessment finalizes the actor's active session. The tier is
// computed here once and persisted; a session that is already completed
// yields its stored result unchanged.
func (s *SessionService) CompleteAssessment(ctx context.Context, actor Actor) (res *AssessmentResult, err error) {
	ctx, span := startSpan(ctx, "SessionService.CompleteAssessment", attribute.String("user.id", actor.UserID))
	defer func() { endSpan(span, err) }()

	id, ok, err := actor.Slot.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, noActiveSession()
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != actor.UserID {
		return nil, sessionNotFound()
	}
	if sess.Completed {
		if err := actor.Slot.Clear(ctx); err != nil {
			return nil, err
		}
		return storedResult(sess), nil
	}
	if !sess.HasAllCategories() {
		return nil, incompleteSession()
	}

	total := sess.Scores.Total()
	a := Classify(total)
	changed, err := s.store.FinalizeSession(ctx, sess.ID, total, a.Tier)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Finalized concurrently; report what was stored.
		sess, err = s.store.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, sessionNotFound()
		}
		if err := actor.Slot.Clear(ctx); err != nil {
			return nil, err
		}
		return storedResult(sess), nil
	}
	if err := actor.Slot.Clear(ctx); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "assessment completed",
		"user_id", actor.UserID, "session_id", sess.ID, "total", total, "tier", a.Tier)
	return &AssessmentResult{SessionID: sess.ID, Scores: sess.Scores, TotalScore: total, Assessment: a}, nil
}

func storedResult(sess *models.Session) *AssessmentResult {
	a, ok := TierByLabel(sess.Level)
	if !ok {
		a = Assessment{Tier: sess.Level}
	}
	return &AssessmentResult{SessionID: sess.ID, Scores: sess.Scores, TotalScore: sess.TotalScore, Assessment: a}
}
