//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/domain"
	"github.com/cloo-solutions/intakeiq/internal/pagination"
	"github.com/cloo-solutions/intakeiq/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClientForDocument(ctx context.Context, t *testing.T, pool *pgxpool.Pool) *domain.Client {
	t.Helper()
	orgRepo := NewOrgRepository(pool)
	clientRepo := NewClientRepository(pool)

	org := &domain.Organization{
		ID:        uuid.NewString(),
		Name:      "Test Org",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, orgRepo.Create(ctx, org))

	client := &domain.Client{
		ID:        uuid.NewString(),
		OrgID:     org.ID,
		Name:      "Test Client",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, clientRepo.Create(ctx, client))
	return client
}

func newTestDocument(client *domain.Client, fileName string, createdAt time.Time) *domain.Document {
	id := uuid.NewString()
	return &domain.Document{
		ID:          id,
		OrgID:       client.OrgID,
		ClientID:    client.ID,
		FileName:    fileName,
		ContentType: "application/pdf",
		StorageKey:  client.OrgID + "/" + id + "/" + fileName,
		Status:      domain.DocumentStatusPendingUpload,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	doc := newTestDocument(client, "bank_statement.pdf", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, doc))

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, doc.FileName, retrieved.FileName)
	assert.Equal(t, doc.StorageKey, retrieved.StorageKey)
	assert.Equal(t, domain.DocumentStatusPendingUpload, retrieved.Status)

	// Classification fields are unset until the document is classified.
	assert.Empty(t, retrieved.FileType)
	assert.Empty(t, retrieved.Category)
	assert.Empty(t, retrieved.Folder)
	assert.Empty(t, string(retrieved.Level))
	assert.Empty(t, string(retrieved.ClassifiedBy))
}

func TestDocumentRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepository_UpdateClassification(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	doc := newTestDocument(client, "bank_statement.pdf", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, doc))

	doc.ApplyClassification(domain.Classification{
		FileType:   "Bank Statement",
		Category:   "Financial",
		Folder:     "financials",
		Level:      domain.LevelClient,
		Confidence: 0.85,
		Source:     domain.ClassifiedByPattern,
	}, time.Now().UTC().Truncate(time.Microsecond))
	doc.SizeBytes = 204800
	require.NoError(t, repo.UpdateClassification(ctx, doc))

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusClassified, retrieved.Status)
	assert.Equal(t, "Bank Statement", retrieved.FileType)
	assert.Equal(t, "financials", retrieved.Folder)
	assert.Equal(t, domain.LevelClient, retrieved.Level)
	assert.Equal(t, 0.85, retrieved.Confidence)
	assert.Equal(t, domain.ClassifiedByPattern, retrieved.ClassifiedBy)
	assert.Equal(t, int64(204800), retrieved.SizeBytes)
}

func TestDocumentRepository_ListByStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	parked1 := newTestDocument(client, "a.pdf", base)
	parked1.Status = domain.DocumentStatusPendingClassification
	parked2 := newTestDocument(client, "b.pdf", base.Add(time.Second))
	parked2.Status = domain.DocumentStatusPendingClassification
	other := newTestDocument(client, "c.pdf", base)

	require.NoError(t, repo.Create(ctx, parked1))
	require.NoError(t, repo.Create(ctx, parked2))
	require.NoError(t, repo.Create(ctx, other))

	docs, err := repo.ListByStatus(ctx, domain.DocumentStatusPendingClassification, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Oldest first so the worker drains in arrival order.
	assert.Equal(t, parked1.ID, docs[0].ID)
	assert.Equal(t, parked2.ID, docs[1].ID)

	docs, err = repo.ListByStatus(ctx, domain.DocumentStatusPendingClassification, 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentRepository_ListByOrgWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		doc := newTestDocument(client, "doc.pdf", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Create(ctx, doc))
	}

	page1, err := repo.ListByOrgWithCursor(ctx, client.OrgID, nil, 3)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 3)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListByOrgWithCursor(ctx, client.OrgID, cursor, 3)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
	assert.False(t, page2.HasMore)
	assert.Empty(t, page2.NextCursor)

	// No overlap between pages.
	seen := map[string]bool{}
	for _, d := range page1.Items {
		seen[d.ID] = true
	}
	for _, d := range page2.Items {
		assert.False(t, seen[d.ID])
	}
}

func TestDocumentRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	doc := newTestDocument(client, "statement.pdf", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, doc))

	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusNeedsReview))

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusNeedsReview, retrieved.Status)

	err = repo.UpdateStatus(ctx, uuid.NewString(), domain.DocumentStatusNeedsReview)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	client := setupClientForDocument(ctx, t, pool)

	doc := newTestDocument(client, "statement.pdf", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, doc))

	require.NoError(t, repo.Delete(ctx, doc.ID))

	_, err := repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	err = repo.Delete(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
