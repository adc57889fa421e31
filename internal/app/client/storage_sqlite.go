package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/infrastructure/migration"
	"equiploan/internal/infrastructure/storage"
)

// SQLiteStorage хранит снимок реестра и журнала в локальном файле
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.SnapshotRepository = (*SQLiteStorage)(nil)

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории данных: %w", err)
	}

	if err := migration.NewMigration(migration.DriverSQLite, migration.SQLiteURL(path), nil).Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции базы данных: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveSnapshot целиком перезаписывает снимок в одной транзакции
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap inventory.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{"DELETE FROM people", "DELETE FROM movements"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ошибка очистки снимка: %w", err)
		}
	}

	personStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO people (document, full_name, grp, phone) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer personStmt.Close()

	for _, p := range snap.People {
		if _, err := personStmt.ExecContext(ctx, p.Document, p.FullName, p.Group, p.Phone); err != nil {
			return fmt.Errorf("ошибка сохранения учащегося %s: %w", p.Document, err)
		}
	}

	eventStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movements (position, local_id, equipment_id, type, document, full_name, grp, phone,
		                       professor, subject, comment, occurred_at, appended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer eventStmt.Close()

	appended := pendingIndex(snap.Pending)
	for i, e := range snap.History {
		var appendedAt sql.NullString
		if at, ok := appended[e]; ok {
			appendedAt = sql.NullString{String: at.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := eventStmt.ExecContext(ctx,
			i, e.ID, e.EquipmentID, string(e.Type), e.Document, e.FullName, e.Group, e.Phone,
			e.Professor, e.Subject, e.Comment, e.Timestamp.UTC().Format(time.RFC3339Nano), appendedAt,
		); err != nil {
			return fmt.Errorf("ошибка сохранения события: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at
	`, snap.SavedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("ошибка сохранения метаданных: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot читает снимок; ErrNoSnapshot, если он еще не сохранялся
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (inventory.Snapshot, error) {
	var snap inventory.Snapshot

	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM sync_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, storage.ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}
	snap.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)

	rows, err := s.db.QueryContext(ctx, `SELECT document, full_name, grp, phone FROM people ORDER BY document`)
	if err != nil {
		return snap, fmt.Errorf("ошибка чтения реестра: %w", err)
	}
	for rows.Next() {
		var p movement.Person
		if err := rows.Scan(&p.Document, &p.FullName, &p.Group, &p.Phone); err != nil {
			rows.Close()
			return snap, fmt.Errorf("ошибка сканирования учащегося: %w", err)
		}
		snap.People = append(snap.People, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("ошибка чтения реестра: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT local_id, equipment_id, type, document, full_name, grp, phone,
		       professor, subject, comment, occurred_at, appended_at
		FROM movements
		ORDER BY position
	`)
	if err != nil {
		return snap, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e          movement.Event
			typ        string
			occurredAt string
			appendedAt sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EquipmentID, &typ, &e.Document, &e.FullName, &e.Group, &e.Phone,
			&e.Professor, &e.Subject, &e.Comment, &occurredAt, &appendedAt); err != nil {
			return snap, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		e.Type = movement.Type(typ)
		e.Timestamp, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return snap, fmt.Errorf("ошибка разбора времени события: %w", err)
		}

		event := &e
		snap.History = append(snap.History, event)
		if appendedAt.Valid {
			at, _ := time.Parse(time.RFC3339Nano, appendedAt.String)
			snap.Pending = append(snap.Pending, inventory.PendingEvent{Event: event, AppendedAt: at})
		}
	}

	return snap, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func pendingIndex(pending []inventory.PendingEvent) map[*movement.Event]time.Time {
	index := make(map[*movement.Event]time.Time, len(pending))
	for _, p := range pending {
		index[p.Event] = p.AppendedAt
	}
	return index
}
