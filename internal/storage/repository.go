// Package storage is the SQLite-backed collection gateway. Rows are decoded
// strictly at this boundary: a document that does not match the transaction
// schema comes back as a gateway.DecodeError instead of leaking a malformed
// record into the aggregation store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
)

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

// ListAll implements gateway.Lister.
func (r *SQLiteRepository) ListAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, name, amount_cents, date, tag
		 FROM transactions WHERE user_id = ? ORDER BY date, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id, typ, name, date, tag string
			cents                    int64
		)
		if err := rows.Scan(&id, &typ, &name, &cents, &date, &tag); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := decodeRow(id, typ, name, cents, date, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create implements gateway.Creator. The id is assigned here.
func (r *SQLiteRepository) Create(ctx context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, type, name, amount_cents, date, tag)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, string(t.Type), t.Name, t.Amount.Cents, t.Date.ISO(), t.Tag)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"user_id", userID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents)

	return id, nil
}

// Update implements gateway.Updater. Only name and amount are mutable.
func (r *SQLiteRepository) Update(ctx context.Context, userID, id string, fields core.UpdateFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}
	if fields.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, fields.Amount.Cents)
	}
	sets = append(sets, "exported = 0")
	args = append(args, userID, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND id = ?", args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// Delete implements gateway.Deleter.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// Get returns one transaction by id, used by the export worker.
func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, name, amount_cents, date, tag
		 FROM transactions WHERE user_id = ? AND id = ?`, userID, id)

	var (
		rid, typ, name, date, tag string
		cents                     int64
	)
	if err := row.Scan(&rid, &typ, &name, &cents, &date, &tag); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, gateway.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return decodeRow(rid, typ, name, cents, date, tag)
}

// PendingExport holds the keys of a row awaiting export to the ledger.
type PendingExport struct {
	UserID        string
	TransactionID string
	CreatedAt     time.Time
}

// ListPendingExport returns rows not yet exported, oldest first.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, id, created_at FROM transactions
		 WHERE exported = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.UserID, &p.TransactionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExported flags a row as synced to the ledger.
func (r *SQLiteRepository) MarkExported(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// SetAvatarURL implements gateway.ProfileStore.
func (r *SQLiteRepository) SetAvatarURL(ctx context.Context, userID, url string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, avatar_url) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET avatar_url = excluded.avatar_url`, userID, url)
	if err != nil {
		return fmt.Errorf("set avatar url: %w", err)
	}
	return nil
}

// AvatarURL implements gateway.ProfileStore. Missing profile means no avatar.
func (r *SQLiteRepository) AvatarURL(ctx context.Context, userID string) (string, error) {
	var url string
	err := r.db.QueryRowContext(ctx,
		`SELECT avatar_url FROM profiles WHERE user_id = ?`, userID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get avatar url: %w", err)
	}
	return url, nil
}

func decodeRow(id, typ, name string, cents int64, date, tag string) (core.Transaction, error) {
	tt := core.TransactionType(typ)
	if !tt.IsValid() {
		return core.Transaction{}, &gateway.DecodeError{ID: id, Field: "type", Cause: core.ErrInvalidType}
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, &gateway.DecodeError{ID: id, Field: "date", Cause: err}
	}
	if cents <= 0 {
		return core.Transaction{}, &gateway.DecodeError{ID: id, Field: "amount_cents", Cause: core.ErrInvalidAmount}
	}
	return core.Transaction{
		ID:     id,
		Type:   tt,
		Name:   name,
		Amount: core.Money{Cents: cents},
		Date:   d,
		Tag:    tag,
	}, nil
}
