package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/extract"
	"github.com/facturaia/invoice-engine/internal/textsource"
)

type memDocs struct {
	byID map[uuid.UUID]*entity.Document
}

func newMemDocs() *memDocs {
	return &memDocs{byID: map[uuid.UUID]*entity.Document{}}
}

func (m *memDocs) Upsert(_ context.Context, sourcePath, fileExt string) (*entity.Document, error) {
	for _, d := range m.byID {
		if d.SourcePath == sourcePath {
			d.Status = string(constants.JobStatusQueued)
			d.Error = nil
			return d, nil
		}
	}
	d := &entity.Document{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		FileExt:    constants.NormalizeExt(fileExt),
		Format:     constants.MapExtToFormat(fileExt),
		Status:     string(constants.JobStatusQueued),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	m.byID[d.ID] = d
	return d, nil
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return d, nil
}

func (m *memDocs) SetStatus(_ context.Context, id uuid.UUID, status constants.JobStatus) error {
	d, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	d.Status = string(status)
	return nil
}

func (m *memDocs) MarkParsed(_ context.Context, id, invoiceID uuid.UUID) error {
	d, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	d.Status = string(constants.JobStatusParsed)
	d.InvoiceID = &invoiceID
	return nil
}

func (m *memDocs) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	d, ok := m.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	d.Status = string(constants.JobStatusFailed)
	d.Error = &errMsg
	return nil
}

type memInvoices struct {
	inserted []*entity.ProcessedInvoice
}

func (m *memInvoices) Insert(_ context.Context, inv *entity.ProcessedInvoice) error {
	m.inserted = append(m.inserted, inv)
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id uuid.UUID) (*entity.ProcessedInvoice, error) {
	for _, inv := range m.inserted {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memInvoices) List(context.Context, *time.Time, *time.Time) ([]*entity.ProcessedInvoice, error) {
	return m.inserted, nil
}

func newTestProcessor(docs *memDocs, invoices *memInvoices) *Processor {
	ex := extract.NewExtractor(nil, extract.WithClock(testClock))
	cl := classify.NewClassifier(nil, classify.Config{}, nil)
	pipe := New(nil, ex, cl, WithClock(testClock))
	return NewProcessor(nil, textsource.NewPlainReader(nil), pipe, docs, invoices, nil)
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessPath(t *testing.T) {
	docs := newMemDocs()
	invoices := &memInvoices{}
	p := newTestProcessor(docs, invoices)

	path := writeDoc(t, "factura.txt", "Cliente: Acme Corp\nFecha: 10/10/2025\nTotal: $1.500.000\n")
	inv, err := p.ProcessPath(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, inv)

	require.Len(t, invoices.inserted, 1)
	assert.Equal(t, inv.ID, invoices.inserted[0].ID)
	assert.Equal(t, "Acme Corp", inv.Client)
	assert.Equal(t, "1500000", inv.Total.String())

	require.Len(t, docs.byID, 1)
	for _, d := range docs.byID {
		assert.Equal(t, string(constants.JobStatusParsed), d.Status)
		require.NotNil(t, d.InvoiceID)
		assert.Equal(t, inv.ID, *d.InvoiceID)
		assert.Nil(t, d.Error)
	}
}

func TestProcessPathEmptyDocumentFails(t *testing.T) {
	docs := newMemDocs()
	invoices := &memInvoices{}
	p := newTestProcessor(docs, invoices)

	path := writeDoc(t, "vacio.txt", "   \n")
	_, err := p.ProcessPath(context.Background(), path)
	require.ErrorIs(t, err, common.ErrEmptyText)

	assert.Empty(t, invoices.inserted)
	for _, d := range docs.byID {
		assert.Equal(t, string(constants.JobStatusFailed), d.Status)
		require.NotNil(t, d.Error)
	}
}

func TestProcessPathUnsupportedExtension(t *testing.T) {
	docs := newMemDocs()
	p := newTestProcessor(docs, &memInvoices{})

	_, err := p.ProcessPath(context.Background(), "/drop/factura.docx")
	require.Error(t, err)
}
