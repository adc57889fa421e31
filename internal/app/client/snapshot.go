package client

import (
	"context"
	"sync"

	"golang.org/x/exp/slog"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/infrastructure/storage"
)

// SnapshotWriter сохраняет снимки хранилища строго по одному: снимок снимается и записывается
// под одной блокировкой, поэтому более старый снимок не может перезаписать более новый.
type SnapshotWriter struct {
	mu    sync.Mutex
	repo  storage.SnapshotRepository
	store *inventory.Store
	log   *slog.Logger
}

func NewSnapshotWriter(repo storage.SnapshotRepository, store *inventory.Store, log *slog.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		repo:  repo,
		store: store,
		log:   log.With(slog.String("component", "snapshot")),
	}
}

// Save записывает текущее содержимое хранилища. Ошибка только логируется.
// Отмена ctx не прерывает запись: событие уже применено и должно пережить перезапуск.
func (w *SnapshotWriter) Save(ctx context.Context) {
	if w == nil || w.repo == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.repo.SaveSnapshot(context.WithoutCancel(ctx), w.store.Snapshot()); err != nil {
		w.log.Error("Ошибка сохранения снимка", "error", err)
	}
}
