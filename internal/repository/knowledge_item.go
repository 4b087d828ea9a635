package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const knowledgeItemColumns = `id, org_id, field_path, is_canonical, category, label, value, value_type,
	source_type, source_document_id, source_document_name, status, added_at`

type KnowledgeItemRepository struct {
	db dbtx
}

func NewKnowledgeItemRepository(pool *pgxpool.Pool) *KnowledgeItemRepository {
	return &KnowledgeItemRepository{db: pool}
}

func NewKnowledgeItemRepositoryWithTx(tx pgx.Tx) *KnowledgeItemRepository {
	return &KnowledgeItemRepository{db: tx}
}

func (r *KnowledgeItemRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	value, err := json.Marshal(k.Value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO knowledge_items (`+knowledgeItemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		k.ID, k.OrgID, k.FieldPath, k.IsCanonical, nullableString(k.Category), nullableString(k.Label),
		value, k.ValueType, k.SourceType, nullableString(k.SourceDocumentID),
		nullableString(k.SourceDocumentName), k.Status, k.AddedAt,
	)
	return err
}

func (r *KnowledgeItemRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+knowledgeItemColumns+` FROM knowledge_items WHERE id = $1`,
		id,
	)
	k, err := scanKnowledgeItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeItemNotFound
		}
		return nil, err
	}
	return k, nil
}

// ListByOrg returns an org's facts in insertion order, the snapshot the
// consolidation engine runs over.
func (r *KnowledgeItemRepository) ListByOrg(ctx context.Context, orgID string) ([]domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeItemColumns+` FROM knowledge_items
		 WHERE org_id = $1 ORDER BY added_at ASC, id ASC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeItemRows(rows)
}

// ListByFieldPath returns an org's facts at one field path, newest first.
func (r *KnowledgeItemRepository) ListByFieldPath(ctx context.Context, orgID, fieldPath string) ([]domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeItemColumns+` FROM knowledge_items
		 WHERE org_id = $1 AND field_path = $2 ORDER BY added_at DESC`,
		orgID, fieldPath,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeItemRows(rows)
}

// Patch applies a partial update. Nil fields are left untouched.
func (r *KnowledgeItemRepository) Patch(ctx context.Context, id string, patch domain.KnowledgeItemPatch) error {
	query := `UPDATE knowledge_items SET id = id`
	args := []any{}
	idx := 1

	if patch.FieldPath != nil {
		query += fmt.Sprintf(", field_path = $%d", idx)
		args = append(args, *patch.FieldPath)
		idx++
	}
	if patch.IsCanonical != nil {
		query += fmt.Sprintf(", is_canonical = $%d", idx)
		args = append(args, *patch.IsCanonical)
		idx++
	}
	if patch.Status != nil {
		query += fmt.Sprintf(", status = $%d", idx)
		args = append(args, *patch.Status)
		idx++
	}
	if patch.Value != nil {
		value, err := json.Marshal(*patch.Value)
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}
		query += fmt.Sprintf(", value = $%d, value_type = $%d", idx, idx+1)
		args = append(args, value, patch.Value.Kind)
		idx += 2
	}

	query += fmt.Sprintf(" WHERE id = $%d", idx)
	args = append(args, id)

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeItemNotFound
	}
	return nil
}

func (r *KnowledgeItemRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM knowledge_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeItemNotFound
	}
	return nil
}

// DeleteMany removes a batch of facts, returning how many rows went away.
// Callers applying a duplicate recommendation run this inside a transaction.
func (r *KnowledgeItemRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM knowledge_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func scanKnowledgeItem(row pgx.Row) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var category, label, sourceDocID, sourceDocName pgtype.Text
	var value []byte
	var addedAt time.Time
	err := row.Scan(
		&k.ID, &k.OrgID, &k.FieldPath, &k.IsCanonical, &category, &label, &value, &k.ValueType,
		&k.SourceType, &sourceDocID, &sourceDocName, &k.Status, &addedAt,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		k.Category = category.String
	}
	if label.Valid {
		k.Label = label.String
	}
	if sourceDocID.Valid {
		k.SourceDocumentID = sourceDocID.String
	}
	if sourceDocName.Valid {
		k.SourceDocumentName = sourceDocName.String
	}
	k.AddedAt = addedAt
	if err := json.Unmarshal(value, &k.Value); err != nil {
		return nil, fmt.Errorf("failed to decode value for item %s: %w", k.ID, err)
	}
	return &k, nil
}

func scanKnowledgeItemRows(rows pgx.Rows) ([]domain.KnowledgeItem, error) {
	var results []domain.KnowledgeItem
	for rows.Next() {
		k, err := scanKnowledgeItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *k)
	}
	return results, rows.Err()
}
