package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/extract"
	"github.com/facturaia/invoice-engine/internal/pipeline"
	"github.com/facturaia/invoice-engine/internal/textsource"
)

// gateDocs parks every Upsert on the gate, then fails the job fast. Lets
// tests hold a worker busy for as long as they need.
type gateDocs struct {
	gate chan struct{}
}

func (d *gateDocs) Upsert(context.Context, string, string) (*entity.Document, error) {
	<-d.gate
	return nil, errors.New("storage offline")
}

func (d *gateDocs) GetByID(context.Context, uuid.UUID) (*entity.Document, error) {
	return nil, common.ErrNotFound
}

func (d *gateDocs) SetStatus(context.Context, uuid.UUID, constants.JobStatus) error { return nil }

func (d *gateDocs) MarkParsed(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (d *gateDocs) MarkFailed(context.Context, uuid.UUID, string) error { return nil }

type noopInvoices struct{}

func (noopInvoices) Insert(context.Context, *entity.ProcessedInvoice) error { return nil }

func (noopInvoices) GetByID(context.Context, uuid.UUID) (*entity.ProcessedInvoice, error) {
	return nil, common.ErrNotFound
}

func (noopInvoices) List(context.Context, *time.Time, *time.Time) ([]*entity.ProcessedInvoice, error) {
	return nil, nil
}

func newTestProcessor(gate chan struct{}) *pipeline.Processor {
	pipe := pipeline.New(nil, extract.NewExtractor(nil), classify.NewClassifier(nil, classify.Config{}, nil))
	return pipeline.NewProcessor(nil, textsource.NewPlainReader(nil), pipe, &gateDocs{gate: gate}, noopInvoices{}, nil)
}

func TestEnqueueAfterShutdownIsNoop(t *testing.T) {
	gate := make(chan struct{})
	close(gate)
	q := NewProcessorQueue(newTestProcessor(gate), nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "/drop/tarde.txt"}))
	q.Shutdown(ctx)
}

func TestShutdownNotBlockedByBackpressuredProducer(t *testing.T) {
	gate := make(chan struct{})
	q := NewProcessorQueue(newTestProcessor(gate), nil, WithWorkers(1), WithQueueSize(1))

	// One job occupies the worker, one fills the buffer, the rest block
	// the producer on the backpressure send.
	var producers sync.WaitGroup
	producers.Add(1)
	go func() {
		defer producers.Done()
		for i := 0; i < 4; i++ {
			_ = q.Enqueue(context.Background(), Job{Path: fmt.Sprintf("/drop/factura-%d.txt", i)})
		}
	}()
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		q.Shutdown(ctx)
	}()
	close(gate)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown deadlocked behind a blocked producer")
	}
	producers.Wait()
}
