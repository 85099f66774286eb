package models

import "time"

// Category is one of the four test domains of an assessment.
type Category string

const (
	CategoryMemory     Category = "memory"
	CategoryAttention  Category = "attention"
	CategoryPerception Category = "perception"
	CategoryLogic      Category = "logic"
)

// MaxCategoryScore is the upper bound of a single category score.
const MaxCategoryScore = 25

// MaxTotalScore is the upper bound of a session total.
const MaxTotalScore = 4 * MaxCategoryScore

// Categories lists every category in report order.
var Categories = []Category{CategoryMemory, CategoryAttention, CategoryPerception, CategoryLogic}

// categoryByName is the only accepted spelling of each test type.
var categoryByName = map[string]Category{
	"memory":     CategoryMemory,
	"attention":  CategoryAttention,
	"perception": CategoryPerception,
	"logic":      CategoryLogic,
}

// ParseCategory resolves a test type name. Matching is exact.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryByName[s]
	return c, ok
}

// Title is the human label used in reports.
func (c Category) Title() string {
	switch c {
	case CategoryMemory:
		return "Memory"
	case CategoryAttention:
		return "Attention"
	case CategoryPerception:
		return "Perception"
	case CategoryLogic:
		return "Logic"
	}
	return string(c)
}

// User is a registered child account. PII is limited to what the report prints.
type User struct {
	ID            string
	Name          string
	Email         string
	PassHash      []byte
	Age           int
	ParentContact string
	CreatedAt     time.Time
}

// Scores holds the four category scores of a session.
type Scores struct {
	Memory     int `json:"memory"`
	Attention  int `json:"attention"`
	Perception int `json:"perception"`
	Logic      int `json:"logic"`
}

// Get returns the score stored for c.
func (s Scores) Get(c Category) int {
	switch c {
	case CategoryMemory:
		return s.Memory
	case CategoryAttention:
		return s.Attention
	case CategoryPerception:
		return s.Perception
	case CategoryLogic:
		return s.Logic
	}
	return 0
}

// Set overwrites the score for c.
func (s *Scores) Set(c Category, v int) {
	switch c {
	case CategoryMemory:
		s.Memory = v
	case CategoryAttention:
		s.Attention = v
	case CategoryPerception:
		s.Perception = v
	case CategoryLogic:
		s.Logic = v
	}
}

// Total is the sum of the four category scores.
func (s Scores) Total() int {
	return s.Memory + s.Attention + s.Perception + s.Logic
}

// Session is one assessment attempt. Once Completed is set, TotalScore and
// Level are fixed and the record is never mutated again.
type Session struct {
	ID         string
	UserID     string
	Scores     Scores
	Recorded   []Category // categories submitted at least once
	TotalScore int
	Level      string
	Completed  bool
	CreatedAt  time.Time
}

// HasAllCategories reports whether every category has been recorded.
func (s *Session) HasAllCategories() bool {
	seen := map[Category]bool{}
	for _, c := range s.Recorded {
		seen[c] = true
	}
	for _, c := range Categories {
		if !seen[c] {
			return false
		}
	}
	return true
}

// QuestionResponse is one answered question. Rows are append-only.
type QuestionResponse struct {
	ID           int64
	SessionID    string
	Category     Category
	Number       int // 1-based within its submission
	ResponseTime float64
	Correct      bool
	Answer       string
	RecordedAt   time.Time
}
