package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/entity"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	conf := 0.9
	first := Entry{
		InvoiceID:  uuid.New(),
		SourcePath: "/drop/factura-1.txt",
		Result: entity.ClassificationResult{
			InvoiceType: constants.InvoiceTypePurchase,
			Method:      constants.MethodAgent,
			Confidence:  &conf,
			Rationale:   "factura de proveedor",
		},
	}
	second := Entry{
		InvoiceID: uuid.New(),
		Result: entity.ClassificationResult{
			InvoiceType: constants.InvoiceTypeSale,
			Method:      constants.MethodLegacy,
			Rationale:   "sale keywords 3 > purchase keywords 1",
		},
	}
	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, second.InvoiceID, got[0].InvoiceID)
	assert.Equal(t, constants.MethodLegacy, got[0].Result.Method)
	assert.Nil(t, got[0].Result.Confidence)

	assert.Equal(t, first.InvoiceID, got[1].InvoiceID)
	assert.Equal(t, "/drop/factura-1.txt", got[1].SourcePath)
	require.NotNil(t, got[1].Result.Confidence)
	assert.InDelta(t, 0.9, *got[1].Result.Confidence, 1e-9)
	assert.False(t, got[1].RecordedAt.IsZero())
}

func TestSQLiteStoreRecentLimit(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			InvoiceID: uuid.New(),
			Result: entity.ClassificationResult{
				InvoiceType: constants.InvoiceTypePurchase,
				Method:      constants.MethodLegacy,
			},
		}))
	}
	got, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
