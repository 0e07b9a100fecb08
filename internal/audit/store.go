// Package audit keeps a local, append-only log of classification
// decisions in SQLite. It exists so misclassifications can be reviewed
// after the fact without querying the main database.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
)

// Entry is one recorded classification decision.
type Entry struct {
	InvoiceID  uuid.UUID
	SourcePath string
	Result     entity.ClassificationResult
	RecordedAt time.Time
}

type Store interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns the latest entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS classification_audit (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	invoice_id  TEXT NOT NULL,
	source_path TEXT,
	invoice_type TEXT NOT NULL,
	method      TEXT NOT NULL,
	confidence  REAL,
	rationale   TEXT,
	recorded_at TEXT NOT NULL
);`

type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the audit database at path.
func OpenSQLite(path string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open audit db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "init audit schema")
	}
	logger.Info("audit.sqlite.open", "path", path)
	return &sqliteStore{db: db, logger: logger}, nil
}

func (s *sqliteStore) Record(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classification_audit
			(invoice_id, source_path, invoice_type, method, confidence, rationale, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.InvoiceID.String(), e.SourcePath,
		string(e.Result.InvoiceType), string(e.Result.Method),
		e.Result.Confidence, e.Result.Rationale,
		e.RecordedAt.Format(time.RFC3339))
	if err != nil {
		s.logger.Error("audit.record.failed", "invoice_id", e.InvoiceID, "error", err)
		return common.WrapError(err, "record audit entry")
	}
	return nil
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, source_path, invoice_type, method, confidence, rationale, recorded_at
		FROM classification_audit
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(err, "query audit entries")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			invoiceID  string
			recordedAt string
		)
		if err := rows.Scan(&invoiceID, &e.SourcePath,
			&e.Result.InvoiceType, &e.Result.Method,
			&e.Result.Confidence, &e.Result.Rationale, &recordedAt); err != nil {
			return nil, common.WrapError(err, "scan audit entry")
		}
		if id, err := uuid.Parse(invoiceID); err == nil {
			e.InvoiceID = id
		}
		if ts, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			e.RecordedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// NopStore discards entries. Used when no audit path is configured.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

func (NopStore) Close() error { return nil }
