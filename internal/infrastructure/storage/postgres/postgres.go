package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/infrastructure/migration"
	"equiploan/internal/infrastructure/storage"
)

// Storage снимок реестра и журнала в PostgreSQL
type Storage struct {
	pool *pgxpool.Pool
}

var _ storage.SnapshotRepository = (*Storage)(nil)

func New(ctx context.Context, databaseURI string) (*Storage, error) {
	mg := migration.NewMigration(migration.DriverPostgres, databaseURI, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Storage{pool: pool}, nil
}

var movementColumns = []string{
	"position", "local_id", "equipment_id", "type", "document", "full_name", "grp", "phone",
	"professor", "subject", "comment", "occurred_at", "appended_at",
}

// SaveSnapshot перезаписывает снимок в одной транзакции через COPY
func (s *Storage) SaveSnapshot(ctx context.Context, snap inventory.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE people, movements`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	people := make([][]any, 0, len(snap.People))
	for _, p := range snap.People {
		people = append(people, []any{p.Document, p.FullName, p.Group, p.Phone})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"people"},
		[]string{"document", "full_name", "grp", "phone"}, pgx.CopyFromRows(people)); err != nil {
		return fmt.Errorf("copy people: %w", err)
	}

	appended := make(map[*movement.Event]time.Time, len(snap.Pending))
	for _, p := range snap.Pending {
		appended[p.Event] = p.AppendedAt
	}

	events := make([][]any, 0, len(snap.History))
	for i, e := range snap.History {
		var appendedAt *time.Time
		if at, ok := appended[e]; ok {
			appendedAt = &at
		}
		events = append(events, []any{
			i, e.ID, e.EquipmentID, string(e.Type), e.Document, e.FullName, e.Group, e.Phone,
			e.Professor, e.Subject, e.Comment, e.Timestamp, appendedAt,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"movements"}, movementColumns, pgx.CopyFromRows(events)); err != nil {
		return fmt.Errorf("copy movements: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sync_meta (id, saved_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET saved_at = EXCLUDED.saved_at
	`, snap.SavedAt); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadSnapshot читает последний снимок
func (s *Storage) LoadSnapshot(ctx context.Context) (inventory.Snapshot, error) {
	var snap inventory.Snapshot

	err := s.pool.QueryRow(ctx, `SELECT saved_at FROM sync_meta WHERE id = 1`).Scan(&snap.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, storage.ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("load meta: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT document, full_name, grp, phone FROM people ORDER BY document`)
	if err != nil {
		return snap, fmt.Errorf("load people: %w", err)
	}
	snap.People, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (movement.Person, error) {
		var p movement.Person
		err := row.Scan(&p.Document, &p.FullName, &p.Group, &p.Phone)
		return p, err
	})
	if err != nil {
		return snap, fmt.Errorf("scan people: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT local_id, equipment_id, type, document, full_name, grp, phone,
		       professor, subject, comment, occurred_at, appended_at
		FROM movements
		ORDER BY position
	`)
	if err != nil {
		return snap, fmt.Errorf("load movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e          movement.Event
			typ        string
			appendedAt *time.Time
		)
		if err := rows.Scan(&e.ID, &e.EquipmentID, &typ, &e.Document, &e.FullName, &e.Group, &e.Phone,
			&e.Professor, &e.Subject, &e.Comment, &e.Timestamp, &appendedAt); err != nil {
			return snap, fmt.Errorf("scan movement: %w", err)
		}
		e.Type = movement.Type(typ)

		event := &e
		snap.History = append(snap.History, event)
		if appendedAt != nil {
			snap.Pending = append(snap.Pending, inventory.PendingEvent{Event: event, AppendedAt: *appendedAt})
		}
	}

	return snap, rows.Err()
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
