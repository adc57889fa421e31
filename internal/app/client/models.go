package client

import (
	"context"
	"sync"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/infrastructure/storage"
)

// MemoryStorage - временное in-memory хранилище снимка, когда снимки на диск отключены
type MemoryStorage struct {
	mu   sync.Mutex
	snap *inventory.Snapshot
}

var _ storage.SnapshotRepository = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) SaveSnapshot(_ context.Context, snap inventory.Snapshot) error {
	cp := copySnapshot(snap)

	m.mu.Lock()
	m.snap = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) LoadSnapshot(_ context.Context) (inventory.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return inventory.Snapshot{}, storage.ErrNoSnapshot
	}
	return copySnapshot(*m.snap), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// copySnapshot копирует срезы, сохраняя связь ожидающих событий с журналом
func copySnapshot(snap inventory.Snapshot) inventory.Snapshot {
	out := inventory.Snapshot{
		People:  append([]movement.Person(nil), snap.People...),
		History: make([]*movement.Event, len(snap.History)),
		Pending: make([]inventory.PendingEvent, 0, len(snap.Pending)),
		SavedAt: snap.SavedAt,
	}

	copies := make(map[*movement.Event]*movement.Event, len(snap.History))
	for i, e := range snap.History {
		c := *e
		out.History[i] = &c
		copies[e] = &c
	}
	for _, p := range snap.Pending {
		e, ok := copies[p.Event]
		if !ok {
			c := *p.Event
			e = &c
		}
		out.Pending = append(out.Pending, inventory.PendingEvent{Event: e, AppendedAt: p.AppendedAt})
	}
	return out
}
