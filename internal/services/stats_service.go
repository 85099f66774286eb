package services

import (
	"context"

	"github.com/soaringjerry/Attentive/internal/models"
)

type StatsStore interface {
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error)
}

// Stats summarizes completed sessions. The aggregates are nil when no
// session has been completed yet.
type Stats struct {
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
	Max     *int     `json:"max"`
	Min     *int     `json:"min"`
}

type StatsService struct {
	store StatsStore
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

// UserStats aggregates the totals of the user's completed sessions.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*Stats, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(sessions), nil
}

func summarize(sessions []*models.Session) *Stats {
	st := &Stats{}
	sum := 0
	for _, sess := range sessions {
		if !sess.Completed {
			continue
		}
		v := sess.TotalScore
		if st.Count == 0 {
			lo, hi := v, v
			st.Min, st.Max = &lo, &hi
		} else {
			if v < *st.Min {
				*st.Min = v
			}
			if v > *st.Max {
				*st.Max = v
			}
		}
		sum += v
		st.Count++
	}
	if st.Count > 0 {
		avg := float64(sum) / float64(st.Count)
		st.Average = &avg
	}
	return st
}
