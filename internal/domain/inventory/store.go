package inventory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"equiploan/internal/domain/movement"
)

const (
	defaultPendingTTL  = 10 * time.Minute
	defaultConfirmSkew = 5 * time.Minute
)

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Config настройки хранилища
type Config struct {
	// PendingTTL сколько локальное событие ждет появления в удаленной истории.
	PendingTTL time.Duration
	// ConfirmSkew допустимое расхождение часов клиента и таблицы при подтверждении.
	ConfirmSkew time.Duration
	Clock       Clock
}

// PendingEvent локально добавленное событие, еще не подтвержденное таблицей.
type PendingEvent struct {
	Event      *movement.Event
	AppendedAt time.Time
}

// MergeStats итог замены истории
type MergeStats struct {
	Remote    int `json:"remote"`
	Confirmed int `json:"confirmed"`
	Expired   int `json:"expired"`
	Pending   int `json:"pending"`
}

// Snapshot согласованная копия содержимого хранилища для сохранения на диск.
type Snapshot struct {
	People  []movement.Person
	History []*movement.Event
	Pending []PendingEvent
	SavedAt time.Time
}

// Store единственное разделяемое состояние приложения: реестр и журнал движений.
// Журнал хранится отсортированным по времени, самые новые события первыми.
type Store struct {
	mu      sync.RWMutex
	people  map[string]movement.Person
	history []*movement.Event
	pending []PendingEvent
	cfg     Config
	log     *slog.Logger
}

// NewStore создает пустое хранилище
func NewStore(cfg Config, log *slog.Logger) *Store {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = defaultPendingTTL
	}
	if cfg.ConfirmSkew <= 0 {
		cfg.ConfirmSkew = defaultConfirmSkew
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	return &Store{
		people: make(map[string]movement.Person),
		cfg:    cfg,
		log:    log.With(slog.String("component", "store")),
	}
}

// ReplaceRoster целиком заменяет реестр. Пустой список тоже допустим.
func (s *Store) ReplaceRoster(people []movement.Person) {
	index := s.buildRoster(people)

	s.mu.Lock()
	s.people = index
	s.mu.Unlock()
}

// FindPerson ищет учащегося по документу
func (s *Store) FindPerson(document string) (movement.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.people[strings.TrimSpace(document)]
	return p, ok
}

// RosterSize возвращает количество записей реестра
func (s *Store) RosterSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people)
}

// People возвращает копию реестра, отсортированную по имени
func (s *Store) People() []movement.Person {
	s.mu.RLock()
	people := make([]movement.Person, 0, len(s.people))
	for _, p := range s.people {
		people = append(people, p)
	}
	s.mu.RUnlock()

	sort.Slice(people, func(i, j int) bool {
		if people[i].FullName == people[j].FullName {
			return people[i].Document < people[j].Document
		}
		return people[i].FullName < people[j].FullName
	})
	return people
}

// ReplaceHistory целиком заменяет журнал удаленной историей.
// Неподтвержденные локальные события сохраняются поверх нее до подтверждения или истечения PendingTTL.
func (s *Store) ReplaceHistory(events []*movement.Event) MergeStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceHistoryLocked(events)
}

// Commit атомарно заменяет реестр и журнал: читатели видят либо оба старых, либо оба новых.
func (s *Store) Commit(people []movement.Person, events []*movement.Event) MergeStats {
	index := s.buildRoster(people)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.people = index
	return s.replaceHistoryLocked(events)
}

// AppendEvent вставляет событие в начало журнала без пересортировки и помечает его как ожидающее.
func (s *Store) AppendEvent(event *movement.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append([]*movement.Event{event}, s.history...)
	s.pending = append(s.pending, PendingEvent{
		Event:      event,
		AppendedAt: s.cfg.Clock.Now(),
	})
}

// RemoveEvent удаляет конкретное событие (по указателю или локальному ID). Возвращает false, если события нет.
func (s *Store) RemoveEvent(event *movement.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for i, e := range s.history {
		if sameEvent(e, event) {
			s.history = append(s.history[:i:i], s.history[i+1:]...)
			removed = true
			break
		}
	}
	for i, p := range s.pending {
		if sameEvent(p.Event, event) {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			break
		}
	}
	return removed
}

// ClearHistory очищает локальный журнал и ожидающие события. Реестр сохраняется.
// Возвращает количество удаленных событий журнала.
func (s *Store) ClearHistory() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history)
	s.history = nil
	s.pending = nil
	return n
}

// History возвращает копию журнала (самые новые первыми)
func (s *Store) History() []*movement.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*movement.Event, len(s.history))
	copy(out, s.history)
	return out
}

// Pending возвращает копию списка неподтвержденных событий
func (s *Store) Pending() []PendingEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PendingEvent, len(s.pending))
	copy(out, s.pending)
	return out
}

// Snapshot снимает копию реестра, журнала и ожидающих событий под одной блокировкой.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	people := make([]movement.Person, 0, len(s.people))
	for _, p := range s.people {
		people = append(people, p)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].Document < people[j].Document })

	history := make([]*movement.Event, len(s.history))
	copy(history, s.history)
	pending := make([]PendingEvent, len(s.pending))
	copy(pending, s.pending)

	return Snapshot{
		People:  people,
		History: history,
		Pending: pending,
		SavedAt: s.cfg.Clock.Now(),
	}
}

// Restore загружает сохраненный снимок. Используется при старте до первой синхронизации.
func (s *Store) Restore(people []movement.Person, history []*movement.Event, pending []PendingEvent) {
	index := s.buildRoster(people)

	events := make([]*movement.Event, 0, len(history))
	for _, e := range history {
		if e.EquipmentID == "" || e.Type == "" {
			continue
		}
		events = append(events, e)
	}
	sortByTimeDesc(events)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.people = index
	s.history = events
	s.pending = append([]PendingEvent(nil), pending...)
}

func (s *Store) buildRoster(people []movement.Person) map[string]movement.Person {
	index := make(map[string]movement.Person, len(people))
	for _, p := range people {
		if !movement.IsValidDocument(p.Document) {
			s.log.Debug("Запись реестра пропущена: неверный документ", "document", p.Document)
			continue
		}
		p.Document = strings.TrimSpace(p.Document)
		index[p.Document] = p
	}
	return index
}

func (s *Store) replaceHistoryLocked(remote []*movement.Event) MergeStats {
	events := make([]*movement.Event, 0, len(remote)+len(s.pending))
	for _, e := range remote {
		if e == nil || e.EquipmentID == "" || e.Type == "" {
			continue
		}
		events = append(events, e)
	}

	stats := MergeStats{Remote: len(events)}
	kept := s.reconcilePending(events, &stats)

	merged := make([]*movement.Event, 0, len(kept)+len(events))
	for _, p := range kept {
		merged = append(merged, p.Event)
	}
	merged = append(merged, events...)
	sortByTimeDesc(merged)

	s.history = merged
	s.pending = kept
	stats.Pending = len(kept)
	return stats
}

// reconcilePending отбрасывает подтвержденные таблицей и просроченные локальные события.
// Одна удаленная строка подтверждает не более одного локального события.
func (s *Store) reconcilePending(remote []*movement.Event, stats *MergeStats) []PendingEvent {
	if len(s.pending) == 0 {
		return nil
	}

	byFingerprint := make(map[string][]time.Time)
	for _, e := range remote {
		fp := e.Fingerprint()
		byFingerprint[fp] = append(byFingerprint[fp], e.Timestamp)
	}

	now := s.cfg.Clock.Now()
	kept := make([]PendingEvent, 0, len(s.pending))
	for _, p := range s.pending {
		fp := p.Event.Fingerprint()
		if idx := confirmingIndex(byFingerprint[fp], p.Event.Timestamp.Add(-s.cfg.ConfirmSkew)); idx >= 0 {
			list := byFingerprint[fp]
			byFingerprint[fp] = append(list[:idx:idx], list[idx+1:]...)
			stats.Confirmed++
			continue
		}
		if now.Sub(p.AppendedAt) > s.cfg.PendingTTL {
			s.log.Warn("Локальное событие не появилось в таблице и отброшено",
				"equipment", p.Event.EquipmentID,
				"type", p.Event.Type,
				"id", p.Event.ID,
				"appended_at", p.AppendedAt,
			)
			stats.Expired++
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func confirmingIndex(timestamps []time.Time, notBefore time.Time) int {
	for i, ts := range timestamps {
		if !ts.Before(notBefore) {
			return i
		}
	}
	return -1
}

func sameEvent(a, b *movement.Event) bool {
	if a == b {
		return true
	}
	return a != nil && b != nil && a.ID != "" && a.ID == b.ID
}

func sortByTimeDesc(events []*movement.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}
