package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/soaringjerry/Attentive/internal/models"
	"github.com/soaringjerry/Attentive/internal/services"
)

// MemoryStore keeps everything in process memory. It mirrors SQLiteStore
// semantics and backs tests and the "memory" storage driver.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	usersByEmail map[string]string
	sessions     map[string]*models.Session
	responses    map[string][]*models.QuestionResponse
	active       map[string]string
	nextRespID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        map[string]*models.User{},
		usersByEmail: map[string]string{},
		sessions:     map[string]*models.Session{},
		responses:    map[string][]*models.QuestionResponse{},
		active:       map[string]string{},
	}
}

func copySession(s *models.Session) *models.Session {
	c := *s
	c.Recorded = append([]models.Category(nil), s.Recorded...)
	return &c
}

func (s *MemoryStore) AddUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.usersByEmail[key]; ok {
		return fmt.Errorf("add user %s: %w", u.Email, services.ErrUniqueViolation)
	}
	c := *u
	s.users[u.ID] = &c
	s.usersByEmail[key] = u.ID
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	c := *s.users[id]
	return &c, nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (s *MemoryStore) CreateSession(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[sess.UserID]; !ok {
		return fmt.Errorf("create session: unknown user %q", sess.UserID)
	}
	s.sessions[sess.ID] = copySession(sess)
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(sess), nil
}

func (s *MemoryStore) ListSessionsByUser(_ context.Context, userID string) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, copySession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) FinalizeSession(_ context.Context, id string, total int, level string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Completed {
		return false, nil
	}
	sess.TotalScore = total
	sess.Level = level
	sess.Completed = true
	return true, nil
}

func (s *MemoryStore) SaveCategoryResult(_ context.Context, sessionID string, c models.Category, score int, rows []*models.QuestionResponse) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.Completed {
		return false, nil
	}
	sess.Scores.Set(c, score)
	recorded := false
	for _, rc := range sess.Recorded {
		if rc == c {
			recorded = true
			break
		}
	}
	if !recorded {
		sess.Recorded = append(sess.Recorded, c)
	}
	for _, r := range rows {
		if r == nil {
			continue
		}
		s.nextRespID++
		cp := *r
		cp.ID = s.nextRespID
		cp.SessionID = sessionID
		cp.Category = c
		s.responses[sessionID] = append(s.responses[sessionID], &cp)
	}
	return true, nil
}

func (s *MemoryStore) ListResponses(_ context.Context, sessionID string) ([]*models.QuestionResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.responses[sessionID]
	out := make([]*models.QuestionResponse, 0, len(src))
	for _, r := range src {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) ActiveSessionID(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.active[userID]
	return id, ok, nil
}

func (s *MemoryStore) SetActiveSession(_ context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = sessionID
	return nil
}

func (s *MemoryStore) ClearActiveSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
	return nil
}

// DeleteSession removes a session and its responses. Active slots that
// point at it are not touched.
func (s *MemoryStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.responses, id)
	return nil
}

var _ services.Store = (*MemoryStore)(nil)
