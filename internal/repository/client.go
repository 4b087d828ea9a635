package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	db dbtx
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: pool}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (id, org_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.OrgID, c.Name, c.CreatedAt,
	)
	return err
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRow(ctx,
		`SELECT id, org_id, name, created_at FROM clients WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, name, created_at FROM clients
		 WHERE org_id = $1 ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}
