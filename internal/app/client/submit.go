package client

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slog"

	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
)

// Proposal то, что пользователь ввел в форме выдачи или возврата.
type Proposal struct {
	EquipmentID string        `json:"equipment_id"`
	Type        movement.Type `json:"type"`
	Document    string        `json:"document,omitempty"`
	Professor   string        `json:"professor,omitempty"`
	Subject     string        `json:"subject,omitempty"`
	Comment     string        `json:"comment,omitempty"`
}

// SubmitResult сообщает только о том, что форма была отправлена.
// Это не подтверждение: таблица может не принять запись, что выяснится при следующей синхронизации.
type SubmitResult struct {
	Event         *movement.Event `json:"event"`
	TransmittedAt time.Time       `json:"transmitted_at"`
}

// Submitter проверяет, дополняет, отправляет событие и применяет его локально.
// Отправки не повторяются автоматически.
type Submitter struct {
	store      *inventory.Store
	deriver    *inventory.Deriver
	sender     FormSender
	notifier   Notifier
	metrics    *Metrics
	clock      inventory.Clock
	sleeper    Sleeper
	snapshots  *SnapshotWriter
	settle     time.Duration
	totalUnits int
	log        *slog.Logger

	// одна отправка за раз: проверка «уже выдано» и добавление события не должны перемежаться
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// SubmitterDeps зависимости конвейера отправки
type SubmitterDeps struct {
	Store       *inventory.Store
	Sender      FormSender
	Notifier    Notifier
	Metrics     *Metrics
	Clock       inventory.Clock
	Sleeper     Sleeper
	Snapshots   *SnapshotWriter
	SettleDelay time.Duration
	TotalUnits  int
}

func NewSubmitter(deps SubmitterDeps, log *slog.Logger) *Submitter {
	if deps.Notifier == nil {
		deps.Notifier = NewLogNotifier(log)
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	if deps.Sleeper == nil {
		deps.Sleeper = timerSleeper{}
	}

	return &Submitter{
		store:      deps.Store,
		deriver:    inventory.NewDeriver(deps.Store),
		sender:     deps.Sender,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		sleeper:    deps.Sleeper,
		snapshots:  deps.Snapshots,
		settle:     deps.SettleDelay,
		totalUnits: deps.TotalUnits,
		log:        log.With(slog.String("component", "submit")),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// CheckDocument проверяет документ по реестру без отправки.
func (s *Submitter) CheckDocument(document string) (movement.Person, error) {
	if err := movement.ValidateDocument(document); err != nil {
		return movement.Person{}, err
	}
	p, ok := s.store.FindPerson(document)
	if !ok {
		return movement.Person{}, fmt.Errorf("%w: %s", movement.ErrUnknownDocument, strings.TrimSpace(document))
	}
	return p, nil
}

// Prepare выполняет проверку и обогащение: для выдачи данные учащегося берутся из реестра,
// для возврата из текущего состояния единицы.
func (s *Submitter) Prepare(p Proposal) (*movement.Event, error) {
	unit, err := movement.ParseUnit(strings.TrimSpace(p.EquipmentID), s.totalUnits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, p.EquipmentID)
	}
	if err := p.Type.Validate(); err != nil {
		return nil, err
	}

	id := movement.EquipmentID(unit)
	state := s.deriver.DeriveState(id)

	event := &movement.Event{
		EquipmentID: id,
		Type:        p.Type,
		Professor:   strings.TrimSpace(p.Professor),
		Subject:     strings.TrimSpace(p.Subject),
		Comment:     strings.TrimSpace(p.Comment),
	}

	switch p.Type {
	case movement.TypeLoan:
		if state.OnLoan {
			return nil, fmt.Errorf("%w: %s (%s)", movement.ErrAlreadyOnLoan, id, state.FullName)
		}
		person, err := s.CheckDocument(p.Document)
		if err != nil {
			return nil, err
		}
		event.Document = person.Document
		event.FullName = person.FullName
		event.Group = person.Group
		event.Phone = person.Phone

	case movement.TypeReturn:
		if !state.OnLoan {
			return nil, fmt.Errorf("%w: %s", movement.ErrNotOnLoan, id)
		}
		last := state.LastMovement
		event.Document = last.Document
		event.FullName = last.FullName
		event.Group = last.Group
		event.Phone = last.Phone
		if event.Professor == "" {
			event.Professor = last.Professor
		}
		if event.Subject == "" {
			event.Subject = last.Subject
		}
	}

	return event, nil
}

// Submit проходит шаги: проверка, обогащение, отправка, ожидание стабилизации, локальное применение.
// При ошибке проверки форма не отправляется; при сетевой ошибке событие не применяется.
func (s *Submitter) Submit(ctx context.Context, p Proposal) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With("equipment", p.EquipmentID, "type", p.Type.String())

	event, err := s.Prepare(p)
	if err != nil {
		log.Warn("Отправка отклонена проверкой", "error", err)
		s.metrics.observeSubmission(p.Type.String(), "invalid")
		s.notifier.Notify(err.Error(), SeverityError)
		return nil, err
	}

	event.Timestamp = s.clock.Now()
	event.ID = ulid.MustNew(ulid.Timestamp(event.Timestamp), s.entropy).String()
	log = log.With("id", event.ID)

	if err := s.sender.SendEvent(ctx, event); err != nil {
		if !errors.Is(err, movement.ErrSubmissionTransport) {
			err = fmt.Errorf("%w: %v", movement.ErrSubmissionTransport, err)
		}
		log.Error("Ошибка отправки формы", "error", err)
		s.metrics.observeSubmission(p.Type.String(), "transport_error")
		s.notifier.Notify("Не удалось отправить запись, попробуйте еще раз", SeverityError)
		return nil, err
	}
	transmittedAt := s.clock.Now()

	if err := s.sleeper.Sleep(ctx, s.settle); err != nil {
		// форма уже отправлена, поэтому событие все равно применяется
		log.Warn("Ожидание стабилизации прервано", "error", err)
	}

	s.store.AppendEvent(event)
	s.snapshots.Save(ctx)
	s.notifier.RefreshAll()
	s.metrics.observeSubmission(p.Type.String(), "transmitted")
	s.updateGauges()
	s.notifier.Notify(fmt.Sprintf("%s: оборудование %s", event.Type.DisplayName(), event.EquipmentID), SeveritySuccess)

	log.Info("Событие отправлено и применено локально", "document", event.Document)

	return &SubmitResult{Event: event, TransmittedAt: transmittedAt}, nil
}

// Rollback убирает ранее примененное событие, если выяснилось, что оно не записано.
func (s *Submitter) Rollback(event *movement.Event) bool {
	if !s.store.RemoveEvent(event) {
		return false
	}
	s.snapshots.Save(context.Background())
	s.notifier.RefreshAll()
	s.updateGauges()
	s.log.Warn("Локальное событие отменено", "id", event.ID, "equipment", event.EquipmentID)
	return true
}

func (s *Submitter) updateGauges() {
	s.metrics.setGauges(len(s.deriver.ActiveLoans(s.totalUnits)), len(s.store.Pending()))
}
