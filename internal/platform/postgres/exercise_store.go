package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/store"
)

const exerciseLockNamespace = "exercise_generation"

// PostgresExerciseStore implements store.ExerciseStore.
type PostgresExerciseStore struct {
	db     store.DBTX
	conn   *sql.DB
	tx     *sql.Tx
	logger *slog.Logger
}

var _ store.ExerciseStore = (*PostgresExerciseStore)(nil)

// NewPostgresExerciseStore creates an exercise store over db.
// It panics if db is nil.
func NewPostgresExerciseStore(db *sql.DB, logger *slog.Logger) *PostgresExerciseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresExerciseStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "exercise_store")),
	}
}

// WithTx implements store.ExerciseStore.WithTx.
func (s *PostgresExerciseStore) WithTx(tx *sql.Tx) store.ExerciseStore {
	return &PostgresExerciseStore{
		db:     tx,
		tx:     tx,
		logger: s.logger,
	}
}

func (s *PostgresExerciseStore) inTx(ctx context.Context, fn func(ctx context.Context, db store.DBTX) error) error {
	if s.tx != nil {
		return fn(ctx, s.tx)
	}
	return store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// ListByCourse implements store.ExerciseStore.ListByCourse.
func (s *PostgresExerciseStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Exercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, question_type, question_text, options, answer,
		       explanation, difficulty, is_ai_generated, created_at, updated_at
		FROM exercises
		WHERE course_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to list exercises",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("exercise", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	exercises := make([]*domain.Exercise, 0)
	for rows.Next() {
		var (
			e       domain.Exercise
			qType   string
			level   string
			options []byte
		)
		if err := rows.Scan(
			&e.ID, &e.CourseID, &qType, &e.QuestionText, &options, &e.Answer,
			&e.Explanation, &level, &e.IsAIGenerated, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, store.NewStoreError("exercise", "list", "scan failed", err)
		}
		e.QuestionType = domain.QuestionType(qType)
		e.Difficulty = domain.Difficulty(level)
		e.Options = []string{}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &e.Options); err != nil {
				return nil, store.NewStoreError("exercise", "list", "invalid options column", err)
			}
		}
		exercises = append(exercises, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("exercise", "list", "row iteration failed", err)
	}
	return exercises, nil
}

// ReplaceAIGenerated implements store.ExerciseStore.ReplaceAIGenerated.
func (s *PostgresExerciseStore) ReplaceAIGenerated(
	ctx context.Context,
	courseID uuid.UUID,
	exercises []*domain.Exercise,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	encoded := make([]string, len(exercises))
	for i, e := range exercises {
		if e.CourseID != courseID {
			return 0, fmt.Errorf("%w: exercise %s belongs to another course", store.ErrInvalidEntity, e.ID)
		}
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		opts := e.Options
		if opts == nil {
			opts = []string{}
		}
		raw, err := json.Marshal(opts)
		if err != nil {
			return 0, fmt.Errorf("%w: options: %v", store.ErrInvalidEntity, err)
		}
		encoded[i] = string(raw)
	}

	var deleted int64
	err := s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		if err := advisoryXactLock(ctx, db, exerciseLockNamespace, courseID); err != nil {
			return store.NewStoreError("exercise", "replace", "lock failed", err)
		}

		res, err := db.ExecContext(ctx,
			`DELETE FROM exercises WHERE course_id = $1 AND is_ai_generated`, courseID)
		if err != nil {
			return store.NewStoreError("exercise", "replace", "delete failed", MapError(err))
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return store.NewStoreError("exercise", "replace", "rows affected failed", err)
		}

		for i, e := range exercises {
			_, err := db.ExecContext(ctx, `
				INSERT INTO exercises (id, course_id, question_type, question_text, options, answer,
				                       explanation, difficulty, is_ai_generated, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, TRUE, $9, $10)
			`, e.ID, e.CourseID, string(e.QuestionType), e.QuestionText, encoded[i], e.Answer,
				e.Explanation, string(e.Difficulty), e.CreatedAt, e.UpdatedAt)
			if err != nil {
				if IsForeignKeyViolation(err) {
					return store.ErrCourseNotFound
				}
				return store.NewStoreError("exercise", "replace", "insert failed", MapError(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace generated exercises",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return 0, err
	}

	log.Debug("generated exercises replaced",
		slog.String("course_id", courseID.String()),
		slog.Int64("deleted", deleted),
		slog.Int("inserted", len(exercises)))
	return deleted, nil
}
