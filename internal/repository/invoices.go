package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
)

// InvoiceRepository persists processed invoices.
type InvoiceRepository interface {
	Insert(ctx context.Context, inv *entity.ProcessedInvoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ProcessedInvoice, error)
	// List returns invoices ordered by date; nil bounds are open ended.
	List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.ProcessedInvoice, error)
}

type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{pool: pool, logger: logger}
}

const invoiceColumns = `id, invoice_date::text, vendor, client, items, subtotal::text, tax_amount::text, total::text,
	nit, invoice_number, invoice_type, classification_method, classification_confidence, source_path, processed_at`

func (r *invoiceRepository) Insert(ctx context.Context, inv *entity.ProcessedInvoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return common.WrapError(err, "encode items")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO invoices (id, invoice_date, vendor, client, items, subtotal, tax_amount, total,
			nit, invoice_number, invoice_type, classification_method, classification_confidence,
			source_path, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		inv.ID, inv.Date, inv.Vendor, inv.Client, items,
		inv.Subtotal.String(), inv.TaxAmount.String(), inv.Total.String(),
		nullIfEmpty(inv.NIT), nullIfEmpty(inv.InvoiceNumber),
		string(inv.InvoiceType), string(inv.ClassificationMethod), inv.ClassificationConfidence,
		nullIfEmpty(inv.SourcePath), inv.ProcessedAt)
	if err != nil {
		r.logger.Error("failed to insert invoice", "invoice_id", inv.ID, "error", err)
		return common.WrapError(err, "insert invoice")
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProcessedInvoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get invoice")
	}
	return inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.ProcessedInvoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices`
	var (
		args  []any
		where []string
	)
	if fromDate != nil {
		args = append(args, fromDate.Format("2006-01-02"))
		where = append(where, fmt.Sprintf("invoice_date >= $%d", len(args)))
	}
	if toDate != nil {
		args = append(args, toDate.Format("2006-01-02"))
		where = append(where, fmt.Sprintf("invoice_date <= $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY invoice_date, processed_at"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, common.WrapError(err, "list invoices")
	}
	defer rows.Close()

	var out []*entity.ProcessedInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan invoice")
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "list invoices")
	}
	return out, nil
}

func scanInvoice(row pgx.Row) (*entity.ProcessedInvoice, error) {
	var (
		inv                     entity.ProcessedInvoice
		items                   []byte
		subtotal, tax, total    string
		nit, number, sourcePath *string
		invoiceType, method     string
		processedAt             time.Time
	)
	if err := row.Scan(&inv.ID, &inv.Date, &inv.Vendor, &inv.Client, &items,
		&subtotal, &tax, &total, &nit, &number, &invoiceType, &method,
		&inv.ClassificationConfidence, &sourcePath, &processedAt); err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	var err error
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("decode subtotal: %w", err)
	}
	if inv.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("decode tax_amount: %w", err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("decode total: %w", err)
	}
	inv.NIT = deref(nit)
	inv.InvoiceNumber = deref(number)
	inv.SourcePath = deref(sourcePath)
	inv.InvoiceType = constants.InvoiceType(invoiceType)
	inv.ClassificationMethod = constants.ClassificationMethod(method)
	inv.ProcessedAt = processedAt.UTC()
	return &inv, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
