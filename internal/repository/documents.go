package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
)

// DocumentRepository tracks every ingested file and its processing state.
type DocumentRepository interface {
	// Upsert registers a source path, returning the existing row when the
	// path was seen before (re-drops re-process the same document row).
	Upsert(ctx context.Context, sourcePath, fileExt string) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) error
	MarkParsed(ctx context.Context, id, invoiceID uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type documentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{pool: pool, logger: logger}
}

const documentColumns = `id, source_path, file_ext, format, status, error, invoice_id, created_at, updated_at`

func (r *documentRepository) Upsert(ctx context.Context, sourcePath, fileExt string) (*entity.Document, error) {
	ext := constants.NormalizeExt(fileExt)
	format := constants.MapExtToFormat(ext)
	if format == "" {
		return nil, common.NewAppError("UNSUPPORTED_FORMAT", "unsupported file extension "+fileExt, common.ErrInvalidInput)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, source_path, file_ext, format, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (source_path) DO UPDATE
			SET status = EXCLUDED.status, error = NULL, updated_at = now()
		RETURNING `+documentColumns,
		uuid.New(), sourcePath, ext, format, string(constants.JobStatusQueued))

	doc, err := scanDocument(row)
	if err != nil {
		r.logger.Error("failed to upsert document", "source_path", sourcePath, "error", err)
		return nil, common.WrapError(err, "upsert document")
	}
	return doc, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get document")
	}
	return doc, nil
}

func (r *documentRepository) SetStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return common.WrapError(err, "set document status")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *documentRepository) MarkParsed(ctx context.Context, id, invoiceID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, invoice_id = $3, error = NULL, updated_at = now()
		WHERE id = $1`,
		id, string(constants.JobStatusParsed), invoiceID)
	if err != nil {
		return common.WrapError(err, "mark document parsed")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *documentRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1`,
		id, string(constants.JobStatusFailed), errMsg)
	if err != nil {
		return common.WrapError(err, "mark document failed")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d         entity.Document
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&d.ID, &d.SourcePath, &d.FileExt, &d.Format, &d.Status,
		&d.Error, &d.InvoiceID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.CreatedAt = createdAt.UTC()
	d.UpdatedAt = updatedAt.UTC()
	return &d, nil
}
