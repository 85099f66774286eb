package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/Attentive/internal/models"
)

const (
	MinAge = 8
	MaxAge = 12
)

type TokenSigner func(uid, email, name string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func() string
	signToken TokenSigner
	tokenTTL  time.Duration
	cost      int
}

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Age           int    `json:"age"`
	ParentContact string `json:"parent_contact"`
}

type AuthResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
}

// Profile is the account view with its completed-session statistics.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Age           int       `json:"age"`
	ParentContact string    `json:"parent_contact,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Stats         *Stats    `json:"stats"`
}

func NewAuthService(store AuthStore, signer TokenSigner, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     uuid.NewString,
		signToken: signer,
		tokenTTL:  ttl,
		cost:      bcrypt.DefaultCost,
	}
}

// ValidAge reports whether age is inside the supported range.
func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, NewInvalidError("name/email/password required")
	}
	if !ValidAge(req.Age) {
		return nil, outOfRangeAge()
	}
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateIdentity()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:            s.idGen(),
		Name:          name,
		Email:         email,
		PassHash:      hash,
		Age:           req.Age,
		ParentContact: strings.TrimSpace(req.ParentContact),
		CreatedAt:     s.now(),
	}
	if err := s.store.AddUser(ctx, u); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, duplicateIdentity()
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return s.issue(u)
}

// Profile loads the account of userID; stats may be nil when the caller
// does not need them.
func (s *AuthService) Profile(ctx context.Context, userID string, stats *StatsService) (*Profile, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, newError(ErrorNotFound, "user_not_found", errors.New("user not found"))
	}
	p := &Profile{ID: u.ID, Name: u.Name, Email: u.Email, Age: u.Age, ParentContact: u.ParentContact, CreatedAt: u.CreatedAt}
	if stats != nil {
		if p.Stats, err = stats.UserStats(ctx, userID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, u.Name, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Name: u.Name, Age: u.Age}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
