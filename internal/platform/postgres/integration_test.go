//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("SCHOLAR_TEST_DB_URL")
	if url == "" {
		t.Skip("SCHOLAR_TEST_DB_URL not set")
	}
	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db, MigrateUp, nil))
	return db
}

func insertCourse(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO courses (id, subject_code, title, source_text) VALUES ($1, 'math', 'Fractions', 'halves')`, id)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM courses WHERE id = $1`, id) })
	return id
}

func TestIntegration_ConcurrentSummaryVersions(t *testing.T) {
	db := openTestDB(t)
	courseID := insertCourse(t, db)
	summaries := NewPostgresSummaryStore(db, nil)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ks, err := domain.NewKnowledgeSummary(courseID, "content")
			if err != nil {
				errs <- err
				return
			}
			errs <- summaries.CreateNextVersion(context.Background(), ks)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := summaries.ListByCourse(context.Background(), courseID)
	require.NoError(t, err)
	require.Len(t, history, writers)
	for i, ks := range history {
		assert.Equal(t, i+1, ks.Version)
	}
}

func TestIntegration_ReplaceKeepsManualExercises(t *testing.T) {
	db := openTestDB(t)
	courseID := insertCourse(t, db)
	_, err := db.Exec(`INSERT INTO exercises (id, course_id, question_type, question_text, answer, difficulty)
		VALUES ($1, $2, 'fill', 'manual', 'x', 'basic')`, uuid.New(), courseID)
	require.NoError(t, err)

	exercises := NewPostgresExerciseStore(db, nil)
	first, err := domain.NewGeneratedExercise(courseID, domain.QuestionShortAnswer, "q1", nil, "a1", "", domain.DifficultyBasic)
	require.NoError(t, err)
	_, err = exercises.ReplaceAIGenerated(context.Background(), courseID, []*domain.Exercise{first})
	require.NoError(t, err)

	second, err := domain.NewGeneratedExercise(courseID, domain.QuestionShortAnswer, "q2", nil, "a2", "", domain.DifficultyBasic)
	require.NoError(t, err)
	deleted, err := exercises.ReplaceAIGenerated(context.Background(), courseID, []*domain.Exercise{second})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	all, err := exercises.ListByCourse(context.Background(), courseID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	var texts []string
	for _, e := range all {
		texts = append(texts, e.QuestionText)
	}
	assert.ElementsMatch(t, []string{"manual", "q2"}, texts)
}

func TestIntegration_SeededTemplates(t *testing.T) {
	db := openTestDB(t)
	templates := NewPostgresTemplateStore(db, nil)
	for _, kind := range []domain.TemplateKind{domain.KindKnowledgeSummary, domain.KindExerciseGeneration} {
		tmpl, err := templates.FindActive(context.Background(), kind, domain.SubjectAll)
		require.NoError(t, err)
		assert.Contains(t, tmpl.Content, "{course_content}")
	}
}
