package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit. Extend as needed later (priority, retry, etc).
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
