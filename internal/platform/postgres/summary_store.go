package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/store"
)

const summaryLockNamespace = "knowledge_summary"

// PostgresSummaryStore implements store.SummaryStore.
type PostgresSummaryStore struct {
	db     store.DBTX
	conn   *sql.DB
	tx     *sql.Tx
	logger *slog.Logger
}

var _ store.SummaryStore = (*PostgresSummaryStore)(nil)

// NewPostgresSummaryStore creates a summary store over db.
// It panics if db is nil.
func NewPostgresSummaryStore(db *sql.DB, logger *slog.Logger) *PostgresSummaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSummaryStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "summary_store")),
	}
}

// WithTx implements store.SummaryStore.WithTx.
func (s *PostgresSummaryStore) WithTx(tx *sql.Tx) store.SummaryStore {
	return &PostgresSummaryStore{
		db:     tx,
		tx:     tx,
		logger: s.logger,
	}
}

func (s *PostgresSummaryStore) inTx(ctx context.Context, fn func(ctx context.Context, db store.DBTX) error) error {
	if s.tx != nil {
		return fn(ctx, s.tx)
	}
	return store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// Latest implements store.SummaryStore.Latest.
func (s *PostgresSummaryStore) Latest(ctx context.Context, courseID uuid.UUID) (*domain.KnowledgeSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, content, version, generated_at
		FROM knowledge_summaries
		WHERE course_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var ks domain.KnowledgeSummary
	err := s.db.QueryRowContext(ctx, query, courseID).Scan(
		&ks.ID, &ks.CourseID, &ks.Content, &ks.Version, &ks.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSummaryNotFound
		}
		log.Error("failed to get latest summary",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("summary", "latest", "query failed", MapError(err))
	}
	return &ks, nil
}

// ListByCourse implements store.SummaryStore.ListByCourse.
func (s *PostgresSummaryStore) ListByCourse(
	ctx context.Context,
	courseID uuid.UUID,
) ([]*domain.KnowledgeSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, course_id, content, version, generated_at
		FROM knowledge_summaries
		WHERE course_id = $1
		ORDER BY version ASC
	`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		log.Error("failed to list summaries",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("summary", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]*domain.KnowledgeSummary, 0)
	for rows.Next() {
		var ks domain.KnowledgeSummary
		if err := rows.Scan(&ks.ID, &ks.CourseID, &ks.Content, &ks.Version, &ks.GeneratedAt); err != nil {
			return nil, store.NewStoreError("summary", "list", "scan failed", err)
		}
		summaries = append(summaries, &ks)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("summary", "list", "row iteration failed", err)
	}
	return summaries, nil
}

// CreateNextVersion implements store.SummaryStore.CreateNextVersion. The
// course's advisory lock is held while the next version is computed and
// inserted.
func (s *PostgresSummaryStore) CreateNextVersion(ctx context.Context, summary *domain.KnowledgeSummary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if summary == nil || summary.CourseID == uuid.Nil {
		return fmt.Errorf("%w: summary requires a course", store.ErrInvalidEntity)
	}

	return s.inTx(ctx, func(ctx context.Context, db store.DBTX) error {
		if err := advisoryXactLock(ctx, db, summaryLockNamespace, summary.CourseID); err != nil {
			return store.NewStoreError("summary", "create", "lock failed", err)
		}

		var next int
		err := db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM knowledge_summaries WHERE course_id = $1`,
			summary.CourseID,
		).Scan(&next)
		if err != nil {
			return store.NewStoreError("summary", "create", "version lookup failed", MapError(err))
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO knowledge_summaries (id, course_id, content, version, generated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, summary.ID, summary.CourseID, summary.Content, next, summary.GeneratedAt)
		if err != nil {
			switch {
			case IsUniqueViolation(err):
				log.Warn("summary version already taken",
					slog.String("course_id", summary.CourseID.String()),
					slog.Int("version", next))
				return store.ErrSummaryVersionExists
			case IsForeignKeyViolation(err):
				return store.ErrCourseNotFound
			}
			log.Error("failed to insert summary",
				slog.String("course_id", summary.CourseID.String()),
				slog.String("error", err.Error()))
			return store.NewStoreError("summary", "create", "insert failed", MapError(err))
		}

		summary.Version = next
		log.Debug("summary version created",
			slog.String("course_id", summary.CourseID.String()),
			slog.Int("version", next))
		return nil
	})
}
