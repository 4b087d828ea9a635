package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const learningEventColumns = `id, keyword, target_file_type, correction_count, state, created_at, updated_at`

type LearningRepository struct {
	db dbtx
}

func NewLearningRepository(pool *pgxpool.Pool) *LearningRepository {
	return &LearningRepository{db: pool}
}

func NewLearningRepositoryWithTx(tx pgx.Tx) *LearningRepository {
	return &LearningRepository{db: tx}
}

// IncrementCorrection bumps the counter for a (keyword, fileType) pair and
// returns the new count. The upsert is a single atomic statement, so under
// concurrent corrections exactly one caller observes each count value and
// the promotion threshold fires exactly once.
func (r *LearningRepository) IncrementCorrection(ctx context.Context, keyword, targetFileType string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`INSERT INTO keyword_corrections (keyword, target_file_type, correction_count, updated_at)
		 VALUES ($1, $2, 1, $3)
		 ON CONFLICT (keyword, target_file_type)
		 DO UPDATE SET correction_count = keyword_corrections.correction_count + 1, updated_at = $3
		 RETURNING correction_count`,
		keyword, targetFileType, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LearningRepository) GetCorrection(ctx context.Context, keyword, targetFileType string) (*domain.KeywordCorrection, error) {
	var c domain.KeywordCorrection
	err := r.db.QueryRow(ctx,
		`SELECT keyword, target_file_type, correction_count, updated_at
		 FROM keyword_corrections WHERE keyword = $1 AND target_file_type = $2`,
		keyword, targetFileType,
	).Scan(&c.Keyword, &c.TargetFileType, &c.CorrectionCount, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLearningEventNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *LearningRepository) CreateEvent(ctx context.Context, e *domain.LearningEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO learning_events (`+learningEventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Keyword, e.TargetFileType, e.CorrectionCount, e.State, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *LearningRepository) GetEvent(ctx context.Context, id string) (*domain.LearningEvent, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+learningEventColumns+` FROM learning_events WHERE id = $1`,
		id,
	)
	return scanLearningEvent(row)
}

// HasEvent reports whether a non-undone event already exists for the pair,
// guarding against re-promotion after further corrections.
func (r *LearningRepository) HasEvent(ctx context.Context, keyword, targetFileType string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM learning_events
		   WHERE keyword = $1 AND target_file_type = $2 AND state <> $3
		 )`,
		keyword, targetFileType, domain.LearningEventUndone,
	).Scan(&exists)
	return exists, err
}

// ListEvents returns events for the review surface, newest first. Dismissed
// events are excluded unless includeDismissed is set; undone events are
// always included so the history stays auditable.
func (r *LearningRepository) ListEvents(ctx context.Context, includeDismissed bool) ([]*domain.LearningEvent, error) {
	query := `SELECT ` + learningEventColumns + ` FROM learning_events`
	if !includeDismissed {
		query += ` WHERE state <> '` + string(domain.LearningEventDismissed) + `'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.LearningEvent
	for rows.Next() {
		e, err := scanLearningEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListActiveKeywords returns every promoted keyword still in effect, for
// rehydrating the registry at startup. Dismissed events keep their keywords.
func (r *LearningRepository) ListActiveKeywords(ctx context.Context) ([]*domain.LearningEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+learningEventColumns+` FROM learning_events
		 WHERE state <> $1 ORDER BY created_at ASC`,
		domain.LearningEventUndone,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.LearningEvent
	for rows.Next() {
		e, err := scanLearningEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEventState transitions an event, constrained to the expected current
// states so concurrent undo calls cannot both succeed.
func (r *LearningRepository) UpdateEventState(ctx context.Context, id string, from []domain.LearningEventState, to domain.LearningEventState) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE learning_events SET state = $1, updated_at = $2
		 WHERE id = $3 AND state = ANY($4)`,
		to, time.Now().UTC(), id, statesToStrings(from),
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrLearningEventNotFound
	}
	return nil
}

// DismissAll marks every active event dismissed, returning how many changed.
func (r *LearningRepository) DismissAll(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE learning_events SET state = $1, updated_at = $2 WHERE state = $3`,
		domain.LearningEventDismissed, time.Now().UTC(), domain.LearningEventActive,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// Stats aggregates the learning history in a single query.
func (r *LearningRepository) Stats(ctx context.Context, now time.Time) (*domain.LearningStats, error) {
	var stats domain.LearningStats
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	err := r.db.QueryRow(ctx,
		`SELECT
		   COUNT(*),
		   COUNT(*) FILTER (WHERE created_at >= $2),
		   COUNT(*) FILTER (WHERE created_at >= $3),
		   COUNT(DISTINCT target_file_type)
		 FROM learning_events
		 WHERE state <> $1`,
		domain.LearningEventUndone, weekAgo, monthAgo,
	).Scan(&stats.TotalLearned, &stats.ThisWeek, &stats.ThisMonth, &stats.FileTypesWithLearning)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanLearningEvent(row pgx.Row) (*domain.LearningEvent, error) {
	var e domain.LearningEvent
	err := row.Scan(&e.ID, &e.Keyword, &e.TargetFileType, &e.CorrectionCount, &e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLearningEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func statesToStrings(states []domain.LearningEventState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
