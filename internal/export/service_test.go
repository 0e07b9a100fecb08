package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/entity"
)

type stubInvoices struct {
	invs []*entity.ProcessedInvoice
	from *time.Time
	to   *time.Time
}

func (s *stubInvoices) Insert(context.Context, *entity.ProcessedInvoice) error { return nil }

func (s *stubInvoices) GetByID(context.Context, uuid.UUID) (*entity.ProcessedInvoice, error) {
	return nil, nil
}

func (s *stubInvoices) List(_ context.Context, from, to *time.Time) ([]*entity.ProcessedInvoice, error) {
	s.from, s.to = from, to
	return s.invs, nil
}

func TestExportInvoicesXLSX(t *testing.T) {
	repo := &stubInvoices{invs: []*entity.ProcessedInvoice{
		{
			ID:                   uuid.New(),
			Date:                 "2026-03-15",
			Vendor:               "ACME SERVICIOS SAS",
			Client:               "Mi Empresa SAS",
			Subtotal:             decimal.NewFromInt(100000),
			TaxAmount:            decimal.NewFromInt(19000),
			Total:                decimal.NewFromInt(119000),
			NIT:                  "900.123.456-7",
			InvoiceType:          constants.InvoiceTypePurchase,
			ClassificationMethod: constants.MethodLegacy,
			SourcePath:           "/drop/doc.txt",
		},
	}}
	svc := NewService(repo, nil)

	raw, err := svc.ExportInvoicesXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2026-03-15", rows[1][0])
	assert.Equal(t, "PURCHASE", rows[1][1])
	assert.Equal(t, "ACME SERVICIOS SAS", rows[1][2])
	assert.Equal(t, "119000", rows[1][8])
}

func TestExportDateWindowNormalization(t *testing.T) {
	repo := &stubInvoices{}
	svc := NewService(repo, nil)

	from := time.Date(2026, 1, 15, 13, 45, 0, 0, time.Local)
	_, err := svc.ExportInvoicesXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	require.NotNil(t, repo.from)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *repo.from)
	require.NotNil(t, repo.to, "open to-date defaults to today")
}
