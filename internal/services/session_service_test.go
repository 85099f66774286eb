package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soaringjerry/Attentive/internal/db"
	"github.com/soaringjerry/Attentive/internal/models"
	"github.com/soaringjerry/Attentive/internal/services"
)

type fixture struct {
	store    *db.MemoryStore
	sessions *services.SessionService
	scores   *services.ScoreService
	reports  *services.ReportService
	actor    services.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemoryStore()
	u := &models.User{ID: "u1", Name: "Sam", Email: "sam@example.com", Age: 10, CreatedAt: time.Now()}
	if err := store.AddUser(context.Background(), u); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return &fixture{
		store:    store,
		sessions: services.NewSessionService(store),
		scores:   services.NewScoreService(store),
		reports:  services.NewReportService(store),
		actor:    services.NewActor(store, "u1"),
	}
}

func (f *fixture) recordAll(t *testing.T, id string, scores map[string]int) {
	t.Helper()
	for tt, v := range scores {
		if err := f.scores.RecordCategoryResult(context.Background(), id, tt, v, nil); err != nil {
			t.Fatalf("record %s: %v", tt, err)
		}
	}
}

var sample = map[string]int{"memory": 20, "attention": 18, "perception": 15, "logic": 12}

func TestCompleteWithoutActiveSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessions.CompleteAssessment(context.Background(), f.actor)
	if !errors.Is(err, services.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}

func TestCompleteAssessment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, err := f.sessions.StartSession(ctx, f.actor)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	f.recordAll(t, id, map[string]int{"memory": 20, "attention": 18, "perception": 15})
	if _, err := f.sessions.CompleteAssessment(ctx, f.actor); !errors.Is(err, services.ErrIncompleteSession) {
		t.Fatalf("expected incomplete session, got %v", err)
	}
	f.recordAll(t, id, map[string]int{"logic": 12})

	res, err := f.sessions.CompleteAssessment(ctx, f.actor)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.TotalScore != 65 || res.Tier != "Moderate ADHD indicators" || res.Color != "#FFC107" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, ok, _ := f.sessions.ActiveSession(ctx, f.actor); ok {
		t.Fatalf("slot should be cleared after completion")
	}
	sess, _ := f.store.GetSession(ctx, id)
	if !sess.Completed || sess.Level != res.Tier || sess.TotalScore != 65 {
		t.Fatalf("session not finalized: %+v", sess)
	}

	if err := f.scores.RecordCategoryResult(ctx, id, "memory", 1, nil); !errors.Is(err, services.ErrSessionCompleted) {
		t.Fatalf("expected completed session to refuse scores, got %v", err)
	}
}

func TestCompleteTwiceReturnsStoredResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)
	f.recordAll(t, id, sample)
	first, err := f.sessions.CompleteAssessment(ctx, f.actor)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.actor.Slot.Set(ctx, id); err != nil {
		t.Fatalf("set slot: %v", err)
	}
	second, err := f.sessions.CompleteAssessment(ctx, f.actor)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if *first != *second {
		t.Fatalf("second completion changed the result: %+v vs %+v", first, second)
	}
}

func TestCompleteDeletedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)
	if err := f.store.DeleteSession(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.sessions.CompleteAssessment(ctx, f.actor); !errors.Is(err, services.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestLastStartWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first, _ := f.sessions.StartSession(ctx, f.actor)
	second, _ := f.sessions.StartSession(ctx, f.actor)
	if first == second {
		t.Fatalf("expected distinct session ids")
	}
	if _, err := f.scores.SubmitResult(ctx, f.actor, services.SubmitRequest{TestType: "memory", Score: 9}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	a, _ := f.store.GetSession(ctx, first)
	b, _ := f.store.GetSession(ctx, second)
	if a.Scores.Memory != 0 || b.Scores.Memory != 9 {
		t.Fatalf("submission went to the wrong session: first=%+v second=%+v", a.Scores, b.Scores)
	}
}

// finalizingStore completes the session right before each write lands.
type finalizingStore struct {
	*db.MemoryStore
}

func (s finalizingStore) SaveCategoryResult(ctx context.Context, sessionID string, c models.Category, score int, rows []*models.QuestionResponse) (bool, error) {
	if _, err := s.FinalizeSession(ctx, sessionID, 0, "Very High ADHD indicators"); err != nil {
		return false, err
	}
	return s.MemoryStore.SaveCategoryResult(ctx, sessionID, c, score, rows)
}

func TestRecordCategoryResultLosesRaceWithFinalize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)

	scores := services.NewScoreService(finalizingStore{f.store})
	err := scores.RecordCategoryResult(ctx, id, "memory", 20, []services.ResponseInput{{Time: 1, Correct: true}})
	if !errors.Is(err, services.ErrSessionCompleted) {
		t.Fatalf("expected session completed, got %v", err)
	}
	sess, _ := f.store.GetSession(ctx, id)
	if sess.Scores.Memory != 0 || sess.TotalScore != sess.Scores.Total() {
		t.Fatalf("completed session was modified: %+v", sess)
	}
}

func TestRecordCategoryResultValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)

	if err := f.scores.RecordCategoryResult(ctx, id, "reading", 5, nil); !errors.Is(err, services.ErrInvalidCategory) {
		t.Fatalf("expected invalid category, got %v", err)
	}
	for _, v := range []int{-1, 26} {
		if err := f.scores.RecordCategoryResult(ctx, id, "memory", v, nil); !errors.Is(err, services.ErrInvalidScore) {
			t.Fatalf("score %d: expected invalid score, got %v", v, err)
		}
	}
	if err := f.scores.RecordCategoryResult(ctx, "missing", "memory", 5, nil); !errors.Is(err, services.ErrInvalidSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
	for _, tt := range []string{"Memory", "memory ", "MEMORY"} {
		if err := f.scores.RecordCategoryResult(ctx, id, tt, 5, nil); !errors.Is(err, services.ErrInvalidCategory) {
			t.Fatalf("%q: expected invalid category, got %v", tt, err)
		}
	}
	for _, v := range []int{0, 25} {
		if err := f.scores.RecordCategoryResult(ctx, id, "memory", v, nil); err != nil {
			t.Fatalf("score %d: %v", v, err)
		}
	}
}

func TestResubmitOverwritesScoreAndAppendsResponses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)
	resp := []services.ResponseInput{{Time: 1.5, Correct: true}, {Time: 2, Correct: false}}

	if err := f.scores.RecordCategoryResult(ctx, id, "attention", 10, resp); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := f.scores.RecordCategoryResult(ctx, id, "attention", 17, resp[:1]); err != nil {
		t.Fatalf("second: %v", err)
	}
	scores, err := f.scores.CategoryScores(ctx, id)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores.Attention != 17 {
		t.Fatalf("score not overwritten: %+v", scores)
	}
	rows, err := f.scores.Responses(ctx, id)
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 response rows, got %d", len(rows))
	}
	if rows[0].Number != 1 || rows[1].Number != 2 || rows[2].Number != 1 {
		t.Fatalf("unexpected numbering: %d %d %d", rows[0].Number, rows[1].Number, rows[2].Number)
	}
}

func TestRenderReportAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id, _ := f.sessions.StartSession(ctx, f.actor)

	if _, err := f.reports.RenderReport(ctx, id, "u1"); !errors.Is(err, services.ErrReportNotReady) {
		t.Fatalf("expected report not ready, got %v", err)
	}
	f.recordAll(t, id, sample)
	if _, err := f.sessions.CompleteAssessment(ctx, f.actor); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.reports.RenderReport(ctx, id, "someone-else"); !errors.Is(err, services.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	if _, err := f.reports.RenderReport(ctx, "missing", "u1"); !errors.Is(err, services.ErrAccessDenied) {
		t.Fatalf("expected access denied for missing session, got %v", err)
	}
	rep, err := f.reports.RenderReport(ctx, id, "u1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rep.ContentType != "application/pdf" || len(rep.Body) == 0 {
		t.Fatalf("unexpected report: %s %d bytes", rep.ContentType, len(rep.Body))
	}
}

func TestStatsAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stats := services.NewStatsService(f.store)
	history := services.NewHistoryService(f.store)

	st, err := stats.UserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Count != 0 || st.Average != nil {
		t.Fatalf("expected empty stats: %+v", st)
	}

	id, _ := f.sessions.StartSession(ctx, f.actor)
	f.recordAll(t, id, sample)
	if _, err := f.sessions.CompleteAssessment(ctx, f.actor); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.sessions.StartSession(ctx, f.actor); err != nil {
		t.Fatalf("start: %v", err)
	}

	st, _ = stats.UserStats(ctx, "u1")
	if st.Count != 1 || *st.Max != 65 || *st.Min != 65 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	rows, err := history.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 sessions, got %d", len(rows))
	}
	if _, _, err := history.ExportResponses(ctx, id, "intruder"); !errors.Is(err, services.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}
