package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"upilens/internal/core"
)

// ErrNotFound is returned when a document id has no row.
var ErrNotFound = errors.New("not found")

// Error messages stored on failed documents are truncated to this length.
const maxErrorMessageLen = 2000

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateDocument implements ports.DocumentWriter.
func (r *SQLiteRepository) CreateDocument(ctx context.Context, doc core.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, checksum, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Checksum, string(core.StatusPending), doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	slog.InfoContext(ctx, "Document recorded",
		"document_id", doc.ID,
		"filename", doc.Filename)
	return nil
}

// MarkDocumentParsed implements ports.DocumentWriter.
func (r *SQLiteRepository) MarkDocumentParsed(ctx context.Context, documentID string, txCount int) error {
	return r.setStatus(ctx, documentID, core.StatusParsed, txCount, "")
}

// MarkDocumentFailed implements ports.DocumentWriter.
func (r *SQLiteRepository) MarkDocumentFailed(ctx context.Context, documentID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
		if len(msg) > maxErrorMessageLen {
			msg = msg[:maxErrorMessageLen]
		}
	}
	return r.setStatus(ctx, documentID, core.StatusFailed, 0, msg)
}

// MarkDocumentIndexed implements ports.DocumentWriter.
func (r *SQLiteRepository) MarkDocumentIndexed(ctx context.Context, documentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents SET status = ? WHERE id = ? AND status = ?`,
		string(core.StatusIndexed), documentID, string(core.StatusParsed))
	if err != nil {
		return fmt.Errorf("mark document indexed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark document indexed %s: %w", documentID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) setStatus(ctx context.Context, documentID string, status core.DocumentStatus, txCount int, errMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, tx_count = ?, error_message = ?, processed_at = ?
		WHERE id = ?`,
		string(status), txCount, errMsg, time.Now().UTC(), documentID)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update document %s: %w", documentID, ErrNotFound)
	}
	return nil
}

// InsertTransactions implements ports.DocumentWriter. Transactions are
// stored in statement order via the position column.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, documentID string, txs []core.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, document_id, position, tx_date, tx_time, amount, direction,
			 counterparty, raw_desc, upi_ref, category, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		if _, err := stmt.ExecContext(ctx,
			tx.ID, documentID, i,
			tx.Date.String(), tx.Time, tx.Amount.String(), string(tx.Direction),
			tx.Counterparty, tx.RawDesc, tx.UPIRef, tx.Category, tx.SourceFile,
		); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved",
		"document_id", documentID,
		"tx_count", len(txs))
	return nil
}

// GetDocument implements ports.DocumentReader.
func (r *SQLiteRepository) GetDocument(ctx context.Context, documentID string) (core.Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, checksum, status, tx_count, error_message, uploaded_at, processed_at
		FROM documents WHERE id = ?`, documentID)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
	}
	return doc, err
}

// ListDocuments implements ports.DocumentReader, newest first.
func (r *SQLiteRepository) ListDocuments(ctx context.Context) ([]core.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, checksum, status, tx_count, error_message, uploaded_at, processed_at
		FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListTransactions implements ports.TransactionReader, ordered by date
// then statement position.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, tx_date, tx_time, amount, direction, counterparty, raw_desc, upi_ref, category, source_file
		FROM transactions ORDER BY tx_date, position`)
}

// TransactionsByDocument implements ports.TransactionReader.
func (r *SQLiteRepository) TransactionsByDocument(ctx context.Context, documentID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, tx_date, tx_time, amount, direction, counterparty, raw_desc, upi_ref, category, source_file
		FROM transactions WHERE document_id = ? ORDER BY position`, documentID)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			dateStr   string
			amountStr string
			direction string
		)
		if err := rows.Scan(&tx.ID, &dateStr, &tx.Time, &amountStr, &direction,
			&tx.Counterparty, &tx.RawDesc, &tx.UPIRef, &tx.Category, &tx.SourceFile); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		tx.Date, err = core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", dateStr, err)
		}
		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("stored amount %q: %w", amountStr, err)
		}
		tx.Direction = core.Direction(direction)

		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (core.Document, error) {
	var (
		doc         core.Document
		status      string
		processedAt sql.NullTime
	)
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.Checksum, &status,
		&doc.TxCount, &doc.ErrorMessage, &doc.UploadedAt, &processedAt); err != nil {
		return core.Document{}, err
	}
	doc.Status = core.DocumentStatus(status)
	if processedAt.Valid {
		t := processedAt.Time
		doc.ProcessedAt = &t
	}
	return doc, nil
}
