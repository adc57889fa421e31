package client

import (
	"time"

	"equiploan/internal/domain/movement"
)

// Колонки реестра: [не используется, ФИО, документ, группа, телефон].
const (
	rosterFullName = 1
	rosterDocument = 2
	rosterGroup    = 3
	rosterPhone    = 4
)

// Колонки истории.
const (
	historyTimestamp = iota
	historyEquipment
	historyFullName
	historyDocument
	historyGroup
	historyPhone
	historyProfessor
	historySubject
	historyType
	historyComment
)

// ParseRoster превращает таблицу реестра в список учащихся.
// Первая строка считается заголовком. Строки без ФИО или с неверным документом отбрасываются.
func ParseRoster(t *Table) []movement.Person {
	if t == nil || len(t.Rows) <= 1 {
		return nil
	}

	people := make([]movement.Person, 0, len(t.Rows)-1)
	for _, r := range t.Rows[1:] {
		p := movement.Person{
			FullName: cellAt(r, rosterFullName),
			Document: cellAt(r, rosterDocument),
			Group:    cellAt(r, rosterGroup),
			Phone:    cellAt(r, rosterPhone),
		}
		if p.FullName == "" || !movement.IsValidDocument(p.Document) {
			continue
		}
		people = append(people, p)
	}
	return people
}

// ParseHistory превращает таблицу истории в события.
// Строки без номера оборудования или типа отбрасываются; нераспознанное время заменяется на now.
// Время без зоны трактуется в loc (часовой пояс таблицы), при nil в зоне now.
func ParseHistory(t *Table, now time.Time, loc *time.Location) []*movement.Event {
	if t == nil || len(t.Rows) <= 1 {
		return nil
	}
	if loc == nil {
		loc = now.Location()
	}

	events := make([]*movement.Event, 0, len(t.Rows)-1)
	for _, r := range t.Rows[1:] {
		equipment := cellAt(r, historyEquipment)
		typ := movement.ParseType(cellAt(r, historyType))
		if equipment == "" || typ == "" {
			continue
		}

		ts, ok := ParseTimestamp(cellAt(r, historyTimestamp), loc)
		if !ok {
			ts, ok = ParseTimestamp(formattedAt(r, historyTimestamp), loc)
		}
		if !ok {
			ts = now
		}

		events = append(events, &movement.Event{
			EquipmentID: equipment,
			Type:        typ,
			FullName:    cellAt(r, historyFullName),
			Document:    cellAt(r, historyDocument),
			Group:       cellAt(r, historyGroup),
			Phone:       cellAt(r, historyPhone),
			Professor:   cellAt(r, historyProfessor),
			Subject:     cellAt(r, historySubject),
			Comment:     cellAt(r, historyComment),
			Timestamp:   ts,
		})
	}
	return events
}

func formattedAt(r Row, i int) string {
	if i >= len(r.C) || r.C[i] == nil {
		return ""
	}
	return r.C[i].F
}
