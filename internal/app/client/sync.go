package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/infrastructure/storage"
)

var ErrSyncInProgress = errors.New("sync already in progress")

// SyncService периодически загружает реестр и историю и целиком заменяет ими содержимое хранилища.
type SyncService struct {
	store      *inventory.Store
	deriver    *inventory.Deriver
	source     Source
	notifier   Notifier
	snapshots  storage.SnapshotRepository
	writer     *SnapshotWriter
	metrics    *Metrics
	retry      RetryPolicy
	clock      inventory.Clock
	interval   time.Duration
	totalUnits int
	log        *slog.Logger

	mu        sync.RWMutex
	isSyncing bool
	stats     SyncStats
}

// SyncStats статистика синхронизации
type SyncStats struct {
	TotalSyncs     int                  `json:"total_syncs"`
	TotalFailed    int                  `json:"total_failed"`
	TotalSkipped   int                  `json:"total_skipped"`
	LastSuccessful time.Time            `json:"last_successful"`
	LastFailed     time.Time            `json:"last_failed"`
	LastError      string               `json:"last_error,omitempty"`
	LastDuration   time.Duration        `json:"last_duration"`
	LastMerge      inventory.MergeStats `json:"last_merge"`
	InProgress     bool                 `json:"in_progress"`
}

// SyncResult результат успешного цикла
type SyncResult struct {
	People    int                  `json:"people"`
	Events    int                  `json:"events"`
	Merge     inventory.MergeStats `json:"merge"`
	Duration  time.Duration        `json:"duration"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
}

// SyncDeps зависимости сервиса синхронизации
type SyncDeps struct {
	Store      *inventory.Store
	Source     Source
	Notifier   Notifier
	Snapshots  storage.SnapshotRepository
	Writer     *SnapshotWriter
	Metrics    *Metrics
	Retry      RetryPolicy
	Clock      inventory.Clock
	Interval   time.Duration
	TotalUnits int
}

// NewSyncService создает сервис синхронизации. Snapshots может быть nil;
// без Writer снимки пишутся собственным SnapshotWriter поверх Snapshots.
func NewSyncService(deps SyncDeps, log *slog.Logger) *SyncService {
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(log)
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Writer == nil && deps.Snapshots != nil {
		deps.Writer = NewSnapshotWriter(deps.Snapshots, deps.Store, log)
	}

	return &SyncService{
		store:      deps.Store,
		deriver:    inventory.NewDeriver(deps.Store),
		source:     deps.Source,
		notifier:   deps.Notifier,
		snapshots:  deps.Snapshots,
		writer:     deps.Writer,
		metrics:    deps.Metrics,
		retry:      deps.Retry,
		clock:      deps.Clock,
		interval:   deps.Interval,
		totalUnits: deps.TotalUnits,
		log:        log.With(slog.String("component", "sync")),
	}
}

// SyncAll загружает оба источника параллельно и фиксирует их только при успехе обоих.
// Если синхронизация уже идет, сразу возвращает ErrSyncInProgress.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.stats.TotalSkipped++
		s.mu.Unlock()
		s.metrics.observeSync("skipped", 0)
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	result := &SyncResult{StartTime: s.clock.Now()}
	started := time.Now()

	s.log.Debug("Начало синхронизации")

	var (
		people []movement.Person
		events []*movement.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.retry.Do(gctx, s.log, "roster", func(ctx context.Context) error {
			var err error
			people, err = s.source.FetchRoster(ctx)
			s.metrics.observeFetch("roster", err)
			return err
		})
	})
	g.Go(func() error {
		return s.retry.Do(gctx, s.log, "history", func(ctx context.Context) error {
			var err error
			events, err = s.source.FetchHistory(ctx)
			s.metrics.observeFetch("history", err)
			return err
		})
	})

	if err := g.Wait(); err != nil {
		s.fail(err, time.Since(started))
		return nil, fmt.Errorf("синхронизация: %w", err)
	}

	merge := s.store.Commit(people, events)
	s.notifier.RefreshAll()

	result.People = len(people)
	result.Events = len(events)
	result.Merge = merge
	result.EndTime = s.clock.Now()
	result.Duration = time.Since(started)

	s.succeed(result)
	s.saveSnapshot(ctx)

	s.log.Info("Синхронизация успешно завершена",
		"duration", result.Duration,
		"people", result.People,
		"events", result.Events,
		"confirmed", merge.Confirmed,
		"pending", merge.Pending,
		"expired", merge.Expired,
	)

	return result, nil
}

func (s *SyncService) succeed(result *SyncResult) {
	s.mu.Lock()
	s.stats.TotalSyncs++
	s.stats.LastSuccessful = result.EndTime
	s.stats.LastDuration = result.Duration
	s.stats.LastMerge = result.Merge
	s.stats.LastError = ""
	s.mu.Unlock()

	s.metrics.observeSync("success", result.Duration.Seconds())
	s.metrics.setGauges(len(s.deriver.ActiveLoans(s.totalUnits)), result.Merge.Pending)
}

func (s *SyncService) fail(err error, took time.Duration) {
	s.mu.Lock()
	s.stats.TotalSyncs++
	s.stats.TotalFailed++
	s.stats.LastFailed = s.clock.Now()
	s.stats.LastDuration = took
	s.stats.LastError = err.Error()
	s.mu.Unlock()

	s.metrics.observeSync("failure", took.Seconds())
	s.log.Error("Ошибка синхронизации, используются последние загруженные данные", "error", err)
	s.notifier.Notify("Нет связи с таблицей: показаны последние загруженные данные", SeverityWarning)
}

func (s *SyncService) saveSnapshot(ctx context.Context) {
	s.writer.Save(ctx)
}

// LoadSnapshot загружает сохраненный снимок в хранилище. Отсутствие снимка не ошибка.
func (s *SyncService) LoadSnapshot(ctx context.Context) (bool, error) {
	if s.snapshots == nil {
		return false, nil
	}

	snap, err := s.snapshots.LoadSnapshot(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("загрузка снимка: %w", err)
	}

	s.store.Restore(snap.People, snap.History, snap.Pending)
	s.notifier.RefreshAll()
	s.log.Info("Загружен сохраненный снимок",
		"saved_at", snap.SavedAt,
		"people", len(snap.People),
		"events", len(snap.History),
	)
	return true, nil
}

// StartAutoSync повторяет SyncAll с интервалом до отмены контекста.
func (s *SyncService) StartAutoSync(ctx context.Context) {
	s.log.Info("Запуск автоматической синхронизации", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Автоматическая синхронизация остановлена")
			return
		case <-ticker.C:
			if _, err := s.SyncAll(ctx); err != nil {
				if errors.Is(err, ErrSyncInProgress) {
					s.log.Debug("Синхронизация уже выполняется, тик пропущен")
					continue
				}
				s.log.Debug("Автоматическая синхронизация не удалась", "error", err)
			}
		}
	}
}

// GetStats возвращает копию статистики
func (s *SyncService) GetStats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.InProgress = s.isSyncing
	return stats
}

// IsSyncing проверяет, идет ли синхронизация
func (s *SyncService) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}
