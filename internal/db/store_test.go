package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Attentive/internal/models"
	"github.com/soaringjerry/Attentive/internal/services"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	sqlDB, err := OpenSQL(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	st, err := NewSQLiteStore(sqlDB)
	require.NoError(t, err)
	applied, err := RunMigrations(context.Background(), sqlDB, "")
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init.sql"}, applied)
	return st
}

// Both implementations must agree on these semantics.
func forEachStore(t *testing.T, fn func(t *testing.T, st services.Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteTestStore(t)) })
}

func seedUser(t *testing.T, st services.Store, id, email string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: "Kid " + id, Email: email, PassHash: []byte("hash"), Age: 10,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, st.AddUser(context.Background(), u))
	return u
}

func TestStoreUsers(t *testing.T) {
	forEachStore(t, func(t *testing.T, st services.Store) {
		ctx := context.Background()
		seedUser(t, st, "u1", "a@example.com")

		got, err := st.FindUserByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, 10, got.Age)
		assert.Equal(t, []byte("hash"), got.PassHash)
		assert.True(t, got.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

		missing, err := st.GetUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)

		err = st.AddUser(ctx, &models.User{ID: "u2", Name: "Dup", Email: "a@example.com", PassHash: []byte("x"), Age: 9})
		assert.True(t, errors.Is(err, services.ErrUniqueViolation), "got %v", err)
	})
}

func TestStoreSessionLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, st services.Store) {
		ctx := context.Background()
		seedUser(t, st, "u1", "a@example.com")
		created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, st.CreateSession(ctx, &models.Session{ID: "s1", UserID: "u1", CreatedAt: created}))

		sess, err := st.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.False(t, sess.Completed)
		assert.Empty(t, sess.Recorded)
		assert.True(t, sess.CreatedAt.Equal(created))

		rows := []*models.QuestionResponse{
			{Number: 1, ResponseTime: 1.5, Correct: true, Answer: "A", RecordedAt: created},
			{Number: 2, ResponseTime: 2.25, Correct: false, Answer: "", RecordedAt: created},
		}
		found, err := st.SaveCategoryResult(ctx, "s1", models.CategoryMemory, 20, rows)
		require.NoError(t, err)
		assert.True(t, found)
		found, err = st.SaveCategoryResult(ctx, "s1", models.CategoryMemory, 22, rows[:1])
		require.NoError(t, err)
		assert.True(t, found)

		found, err = st.SaveCategoryResult(ctx, "missing", models.CategoryLogic, 5, rows)
		require.NoError(t, err)
		assert.False(t, found)

		sess, err = st.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 22, sess.Scores.Memory)
		assert.Equal(t, []models.Category{models.CategoryMemory}, sess.Recorded)

		resp, err := st.ListResponses(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, resp, 3)
		assert.Equal(t, models.CategoryMemory, resp[0].Category)
		assert.Equal(t, 2.25, resp[1].ResponseTime)
		assert.True(t, resp[0].ID < resp[1].ID && resp[1].ID < resp[2].ID)

		changed, err := st.FinalizeSession(ctx, "s1", 22, "High ADHD indicators")
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = st.FinalizeSession(ctx, "s1", 99, "Low ADHD indicators")
		require.NoError(t, err)
		assert.False(t, changed, "finalization is one-way")

		sess, err = st.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, sess.Completed)
		assert.Equal(t, 22, sess.TotalScore)
		assert.Equal(t, "High ADHD indicators", sess.Level)

		list, err := st.ListSessionsByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestStoreActiveSlot(t *testing.T) {
	forEachStore(t, func(t *testing.T, st services.Store) {
		ctx := context.Background()
		seedUser(t, st, "u1", "a@example.com")

		_, ok, err := st.ActiveSessionID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, st.SetActiveSession(ctx, "u1", "s1"))
		require.NoError(t, st.SetActiveSession(ctx, "u1", "s2"))
		id, ok, err := st.ActiveSessionID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "s2", id)

		require.NoError(t, st.ClearActiveSession(ctx, "u1"))
		require.NoError(t, st.ClearActiveSession(ctx, "u1"))
		_, ok, err = st.ActiveSessionID(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStoreCompletedSessionIsImmutable(t *testing.T) {
	forEachStore(t, func(t *testing.T, st services.Store) {
		ctx := context.Background()
		seedUser(t, st, "u1", "a@example.com")
		require.NoError(t, st.CreateSession(ctx, &models.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now()}))
		for _, c := range models.Categories {
			found, err := st.SaveCategoryResult(ctx, "s1", c, 10, nil)
			require.NoError(t, err)
			require.True(t, found)
		}
		changed, err := st.FinalizeSession(ctx, "s1", 40, "High ADHD indicators")
		require.NoError(t, err)
		require.True(t, changed)

		row := []*models.QuestionResponse{{Number: 1, ResponseTime: 1, Correct: true, RecordedAt: time.Now()}}
		found, err := st.SaveCategoryResult(ctx, "s1", models.CategoryMemory, 25, row)
		require.NoError(t, err)
		assert.False(t, found, "completed session accepted a score")

		sess, err := st.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 10, sess.Scores.Memory)
		assert.Equal(t, sess.TotalScore, sess.Scores.Total())
		resp, err := st.ListResponses(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, resp)
	})
}

func TestSQLiteSlotMayOutliveSession(t *testing.T) {
	st := newSQLiteTestStore(t)
	ctx := context.Background()
	seedUser(t, st, "u1", "a@example.com")
	require.NoError(t, st.CreateSession(ctx, &models.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now()}))
	require.NoError(t, st.SetActiveSession(ctx, "u1", "s1"))

	_, err := st.DB().ExecContext(ctx, `DELETE FROM test_sessions WHERE id = ?`, "s1")
	require.NoError(t, err)

	id, ok, err := st.ActiveSessionID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s1", id)
	sess, err := st.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSQLiteRejectsOutOfRangeScore(t *testing.T) {
	st := newSQLiteTestStore(t)
	ctx := context.Background()
	seedUser(t, st, "u1", "a@example.com")
	require.NoError(t, st.CreateSession(ctx, &models.Session{ID: "s1", UserID: "u1", CreatedAt: time.Now()}))
	_, err := st.SaveCategoryResult(ctx, "s1", models.CategoryLogic, 30, nil)
	assert.Error(t, err)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	st := newSQLiteTestStore(t)
	applied, err := RunMigrations(context.Background(), st.DB(), "")
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestOpenMemoryDriver(t *testing.T) {
	st, closer, err := Open(context.Background(), DriverMemory, "", "")
	require.NoError(t, err)
	defer func() { _ = closer() }()
	_, ok := st.(*MemoryStore)
	assert.True(t, ok)

	_, _, err = Open(context.Background(), "postgres", "x", "")
	assert.Error(t, err)
}
