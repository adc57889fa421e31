package storage

import (
	"context"
	"errors"

	"equiploan/internal/domain/inventory"
)

var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotRepository хранит последний снимок реестра и журнала для работы без сети.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snap inventory.Snapshot) error
	// LoadSnapshot возвращает ErrNoSnapshot, если снимок еще не сохранялся.
	LoadSnapshot(ctx context.Context) (inventory.Snapshot, error)
	Close() error
}
