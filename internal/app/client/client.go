package client

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"equiploan/internal/app/client/config"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/infrastructure/storage"
)

// App ядро учета оборудования: одно хранилище, общее для синхронизации, отправки и чтения состояния.
type App struct {
	config    *config.Config
	log       *slog.Logger
	store     *inventory.Store
	deriver   *inventory.Deriver
	sync      *SyncService
	submitter *Submitter
	snapshots storage.SnapshotRepository
	writer    *SnapshotWriter
	metrics   *Metrics
	notifier  *notifierProxy

	wg     gosync.WaitGroup
	cancel context.CancelFunc
	mu     gosync.Mutex
}

type options struct {
	notifier  Notifier
	source    Source
	sender    FormSender
	snapshots storage.SnapshotRepository
	clock     inventory.Clock
	sleeper   Sleeper
	metrics   *Metrics
}

// Option переопределяет зависимость приложения
type Option func(*options)

func WithNotifier(n Notifier) Option                    { return func(o *options) { o.notifier = n } }
func WithSource(s Source) Option                        { return func(o *options) { o.source = s } }
func WithFormSender(s FormSender) Option                { return func(o *options) { o.sender = s } }
func WithSnapshots(r storage.SnapshotRepository) Option { return func(o *options) { o.snapshots = r } }
func WithClock(c inventory.Clock) Option                { return func(o *options) { o.clock = c } }
func WithSleeper(s Sleeper) Option                      { return func(o *options) { o.sleeper = s } }
func WithMetrics(m *Metrics) Option                     { return func(o *options) { o.metrics = m } }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = systemClock{}
	}
	if o.sleeper == nil {
		o.sleeper = timerSleeper{}
	}
	if o.metrics == nil {
		o.metrics = NewMetrics()
	}
	if o.notifier == nil {
		o.notifier = NewLogNotifier(log)
	}

	if o.source == nil || o.sender == nil {
		httpCl := NewHTTPClient(cfg, o.clock, log)
		if o.source == nil {
			o.source = httpCl
		}
		if o.sender == nil {
			o.sender = httpCl
		}
	}

	if o.snapshots == nil {
		o.snapshots = openSnapshots(cfg, log)
	}

	store := inventory.NewStore(inventory.Config{
		PendingTTL:  cfg.PendingTTL,
		ConfirmSkew: cfg.ConfirmSkew,
		Clock:       o.clock,
	}, log)

	proxy := &notifierProxy{target: o.notifier}

	app := &App{
		config:    cfg,
		log:       log,
		store:     store,
		deriver:   inventory.NewDeriver(store),
		snapshots: o.snapshots,
		metrics:   o.metrics,
		notifier:  proxy,
	}

	writer := NewSnapshotWriter(o.snapshots, store, log)
	app.writer = writer

	app.sync = NewSyncService(SyncDeps{
		Store:      store,
		Source:     o.source,
		Notifier:   proxy,
		Snapshots:  o.snapshots,
		Writer:     writer,
		Metrics:    o.metrics,
		Retry:      retryPolicyFrom(cfg, o.sleeper),
		Clock:      o.clock,
		Interval:   cfg.SyncInterval,
		TotalUnits: cfg.TotalUnits,
	}, log)

	app.submitter = NewSubmitter(SubmitterDeps{
		Store:       store,
		Sender:      o.sender,
		Notifier:    proxy,
		Metrics:     o.metrics,
		Clock:       o.clock,
		Sleeper:     o.sleeper,
		Snapshots:   writer,
		SettleDelay: cfg.SettleDelay,
		TotalUnits:  cfg.TotalUnits,
	}, log)

	return app, nil
}

func openSnapshots(cfg *config.Config, log *slog.Logger) storage.SnapshotRepository {
	if !cfg.SnapshotEnable {
		return NewMemoryStorage()
	}
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		return NewMemoryStorage()
	}
	return sqliteStorage
}

// SetNotifier подключает слой отображения после создания приложения (например, режим watch).
func (a *App) SetNotifier(n Notifier) {
	a.notifier.set(n)
}

// Init загружает сохраненный снимок и выполняет первую синхронизацию.
// Ошибка синхронизации не фатальна: приложение продолжает работу на последних данных.
func (a *App) Init(ctx context.Context) {
	if _, err := a.sync.LoadSnapshot(ctx); err != nil {
		a.log.Warn("Снимок не загружен", "error", err)
	}
	if _, err := a.sync.SyncAll(ctx); err != nil {
		a.log.Warn("Первая синхронизация не удалась", "error", err)
	}
}

// LoadSnapshot загружает последний сохраненный снимок без обращения к сети
func (a *App) LoadSnapshot(ctx context.Context) (bool, error) {
	return a.sync.LoadSnapshot(ctx)
}

// Run выполняет Init и периодическую синхронизацию до отмены контекста или Shutdown.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()
	defer cancel()

	a.log.Info("Клиент запущен",
		"env", a.config.Env,
		"units", a.config.TotalUnits,
		"interval", a.config.SyncInterval,
	)

	a.Init(ctx)
	a.sync.StartAutoSync(ctx)
	return nil
}

// Shutdown останавливает периодическую синхронизацию и закрывает хранилище снимков
func (a *App) Shutdown() {
	a.log.Info("Завершение работы клиента...")

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	a.wg.Wait()
	if err := a.snapshots.Close(); err != nil {
		a.log.Error("Ошибка закрытия хранилища снимков", "error", err)
	}
	a.log.Info("Клиент завершил работу")
}

// TotalUnits количество единиц оборудования
func (a *App) TotalUnits() int {
	return a.config.TotalUnits
}

// Grid состояния всех единиц 1..TotalUnits
func (a *App) Grid() []movement.EquipmentState {
	return a.deriver.DeriveAll(a.config.TotalUnits)
}

// State состояние одной единицы
func (a *App) State(equipmentID string) (movement.EquipmentState, error) {
	unit, err := movement.ParseUnit(strings.TrimSpace(equipmentID), a.config.TotalUnits)
	if err != nil {
		return movement.EquipmentState{}, fmt.Errorf("%w: %q", err, equipmentID)
	}
	return a.deriver.DeriveState(movement.EquipmentID(unit)), nil
}

// ActiveLoans единицы на руках
func (a *App) ActiveLoans() []movement.EquipmentState {
	return a.deriver.ActiveLoans(a.config.TotalUnits)
}

// People копия реестра
func (a *App) People() []movement.Person {
	return a.store.People()
}

// History последние limit событий (все при limit <= 0)
func (a *App) History(limit int) []*movement.Event {
	history := a.store.History()
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// Pending локальные события, еще не подтвержденные таблицей
func (a *App) Pending() []inventory.PendingEvent {
	return a.store.Pending()
}

// FindPerson поиск учащегося по документу
func (a *App) FindPerson(document string) (movement.Person, bool) {
	return a.store.FindPerson(document)
}

// CheckDocument проверка документа без отправки
func (a *App) CheckDocument(document string) (movement.Person, error) {
	return a.submitter.CheckDocument(document)
}

// Loan выдача оборудования
func (a *App) Loan(ctx context.Context, equipmentID, document, professor, subject string) (*SubmitResult, error) {
	return a.submitter.Submit(ctx, Proposal{
		EquipmentID: equipmentID,
		Type:        movement.TypeLoan,
		Document:    document,
		Professor:   professor,
		Subject:     subject,
	})
}

// Return возврат оборудования
func (a *App) Return(ctx context.Context, equipmentID, comment string) (*SubmitResult, error) {
	return a.submitter.Submit(ctx, Proposal{
		EquipmentID: equipmentID,
		Type:        movement.TypeReturn,
		Comment:     comment,
	})
}

// Submit произвольное предложение события
func (a *App) Submit(ctx context.Context, p Proposal) (*SubmitResult, error) {
	return a.submitter.Submit(ctx, p)
}

// ResetLocalView очищает локальный журнал (вместе с ожидающими событиями) и сохраняет снимок.
// Реестр остается. Журнал вернется при следующей синхронизации.
func (a *App) ResetLocalView(ctx context.Context) int {
	removed := a.store.ClearHistory()
	a.writer.Save(ctx)
	a.notifier.RefreshAll()
	a.submitter.updateGauges()
	a.log.Warn("Локальный журнал очищен", "events", removed)
	return removed
}

// Rollback отмена локально примененного события
func (a *App) Rollback(event *movement.Event) bool {
	return a.submitter.Rollback(event)
}

// SyncNow синхронизация по требованию
func (a *App) SyncNow(ctx context.Context) (*SyncResult, error) {
	a.log.Info("Запуск принудительной синхронизации")
	return a.sync.SyncAll(ctx)
}

// Stats статистика синхронизации
func (a *App) Stats() SyncStats {
	return a.sync.GetStats()
}

// Metrics метрики приложения
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// notifierProxy позволяет заменить Notifier после создания сервисов
type notifierProxy struct {
	mu     gosync.RWMutex
	target Notifier
}

func (p *notifierProxy) set(n Notifier) {
	p.mu.Lock()
	p.target = n
	p.mu.Unlock()
}

func (p *notifierProxy) RefreshAll() {
	p.mu.RLock()
	t := p.target
	p.mu.RUnlock()
	t.RefreshAll()
}

func (p *notifierProxy) Notify(message string, severity Severity) {
	p.mu.RLock()
	t := p.target
	p.mu.RUnlock()
	t.Notify(message, severity)
}
