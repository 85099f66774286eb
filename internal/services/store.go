package services

import (
	"context"
	"errors"

	"github.com/soaringjerry/Attentive/internal/models"
)

// ErrUniqueViolation is returned by stores when an insert collides with a
// unique constraint (currently only users.email).
var ErrUniqueViolation = errors.New("unique constraint violation")

type AuthStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	AddUser(ctx context.Context, u *models.User) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	// GetSession returns nil, nil when the session does not exist.
	GetSession(ctx context.Context, id string) (*models.Session, error)
	// FinalizeSession marks an open session completed. It reports false when
	// no open session with that id exists.
	FinalizeSession(ctx context.Context, id string, total int, level string) (bool, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error)
}

type ResponseStore interface {
	// SaveCategoryResult overwrites one category score and appends the
	// response rows atomically. It reports false, writing nothing, when the
	// session is missing or already completed.
	SaveCategoryResult(ctx context.Context, sessionID string, c models.Category, score int, rows []*models.QuestionResponse) (bool, error)
	ListResponses(ctx context.Context, sessionID string) ([]*models.QuestionResponse, error)
}

// SlotStore persists the per-user active session pointer.
type SlotStore interface {
	ActiveSessionID(ctx context.Context, userID string) (string, bool, error)
	SetActiveSession(ctx context.Context, userID, sessionID string) error
	ClearActiveSession(ctx context.Context, userID string) error
}

// Store is the full persistence surface wired by the server.
type Store interface {
	AuthStore
	SessionStore
	ResponseStore
	SlotStore
}

// ActiveSlot is the mutable "current test session" slot of one user.
type ActiveSlot interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, sessionID string) error
	Clear(ctx context.Context) error
}

// Actor is the authenticated caller of a core operation together with its
// own active-session slot. It is built per request and never shared.
type Actor struct {
	UserID string
	Slot   ActiveSlot
}

type storeSlot struct {
	store  SlotStore
	userID string
}

// SlotFor binds the slot of userID to a SlotStore.
func SlotFor(store SlotStore, userID string) ActiveSlot {
	return &storeSlot{store: store, userID: userID}
}

// NewActor builds an Actor whose slot lives in store.
func NewActor(store SlotStore, userID string) Actor {
	return Actor{UserID: userID, Slot: SlotFor(store, userID)}
}

func (s *storeSlot) Get(ctx context.Context) (string, bool, error) {
	return s.store.ActiveSessionID(ctx, s.userID)
}

func (s *storeSlot) Set(ctx context.Context, sessionID string) error {
	return s.store.SetActiveSession(ctx, s.userID, sessionID)
}

func (s *storeSlot) Clear(ctx context.Context) error {
	return s.store.ClearActiveSession(ctx, s.userID)
}
