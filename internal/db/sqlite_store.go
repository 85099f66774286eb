package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soaringjerry/Attentive/internal/models"
	"github.com/soaringjerry/Attentive/internal/services"
)

// categoryColumns maps each category to its score and "recorded" columns.
// Column names are never derived from caller input.
var categoryColumns = map[models.Category]struct{ score, recorded string }{
	models.CategoryMemory:     {"memory_score", "memory_recorded"},
	models.CategoryAttention:  {"attention_score", "attention_recorded"},
	models.CategoryPerception: {"perception_score", "perception_recorded"},
	models.CategoryLogic:      {"logic_score", "logic_recorded"},
}

const sessionColumns = `id, user_id, session_date,
	memory_score, attention_score, perception_score, logic_score,
	memory_recorded, attention_recorded, perception_recorded, logic_recorded,
	total_score, assessment_level, completed`

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, logger: slog.Default()}, nil
}

// DB returns the underlying handle.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		s.logger.Error("sqlite store", "op", prefix, "err", err)
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ---- users ----

func (s *SQLiteStore) AddUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, pass_hash, age, parent_contact, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PassHash, u.Age, toNullString(u.ParentContact), formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("add user %s: %w", u.Email, services.ErrUniqueViolation)
	}
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, pass_hash, age, parent_contact, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, pass_hash, age, parent_contact, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		contact sql.NullString
		created string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PassHash, &u.Age, &contact, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ParentContact = contact.String
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// ---- sessions ----

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_sessions (id, user_id, session_date) VALUES (?, ?, ?)`,
		sess.ID, sess.UserID, formatTime(sess.CreatedAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		sess                                      models.Session
		date                                      string
		level                                     sql.NullString
		memRec, attRec, perRec, logRec, completed int64
	)
	err := row.Scan(&sess.ID, &sess.UserID, &date,
		&sess.Scores.Memory, &sess.Scores.Attention, &sess.Scores.Perception, &sess.Scores.Logic,
		&memRec, &attRec, &perRec, &logRec,
		&sess.TotalScore, &level, &completed)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt = parseTime(date)
	sess.Level = level.String
	sess.Completed = int64ToBool(completed)
	recorded := []struct {
		c  models.Category
		on int64
	}{
		{models.CategoryMemory, memRec},
		{models.CategoryAttention, attRec},
		{models.CategoryPerception, perRec},
		{models.CategoryLogic, logRec},
	}
	for _, r := range recorded {
		if int64ToBool(r.on) {
			sess.Recorded = append(sess.Recorded, r.c)
		}
	}
	return &sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM test_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE user_id = ? ORDER BY session_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { s.logErr("ListSessionsByUser close", rows.Close()) }()
	var out []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FinalizeSession(ctx context.Context, id string, total int, level string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_sessions SET total_score = ?, assessment_level = ?, completed = 1 WHERE id = ? AND completed = 0`,
		total, level, id)
	if err != nil {
		return false, fmt.Errorf("finalize session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finalize session: %w", err)
	}
	return n > 0, nil
}

// ---- responses ----

func (s *SQLiteStore) SaveCategoryResult(ctx context.Context, sessionID string, c models.Category, score int, rows []*models.QuestionResponse) (found bool, err error) {
	cols, ok := categoryColumns[c]
	if !ok {
		return false, fmt.Errorf("unknown category %q", c)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil || !found {
			s.logErr("SaveCategoryResult rollback", ignoreDone(tx.Rollback()))
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE test_sessions SET `+cols.score+` = ?, `+cols.recorded+` = 1 WHERE id = ? AND completed = 0`, score, sessionID)
	if err != nil {
		return false, fmt.Errorf("update score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update score: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO test_results (session_id, test_type, question_number, response_time, correct_answer, user_response, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return false, fmt.Errorf("prepare insert response: %w", err)
	}
	defer func() { s.logErr("SaveCategoryResult stmt close", stmt.Close()) }()
	for _, r := range rows {
		if r == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, sessionID, string(c), r.Number, r.ResponseTime,
			boolToInt64(r.Correct), r.Answer, formatTime(r.RecordedAt)); err != nil {
			return false, fmt.Errorf("insert response: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (s *SQLiteStore) ListResponses(ctx context.Context, sessionID string) ([]*models.QuestionResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, test_type, question_number, response_time, correct_answer, user_response, recorded_at
		 FROM test_results WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer func() { s.logErr("ListResponses close", rows.Close()) }()
	var out []*models.QuestionResponse
	for rows.Next() {
		var (
			r        models.QuestionResponse
			testType string
			correct  int64
			recorded string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &testType, &r.Number, &r.ResponseTime, &correct, &r.Answer, &recorded); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Category = models.Category(testType)
		r.Correct = int64ToBool(correct)
		r.RecordedAt = parseTime(recorded)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// ---- active slot ----

func (s *SQLiteStore) ActiveSessionID(ctx context.Context, userID string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT session_id FROM active_sessions WHERE user_id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get active session: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) SetActiveSession(ctx context.Context, userID, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO active_sessions (user_id, session_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET session_id = excluded.session_id, updated_at = excluded.updated_at`,
		userID, sessionID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearActiveSession(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM active_sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

var _ services.Store = (*SQLiteStore)(nil)
