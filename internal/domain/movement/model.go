package movement

import (
	"strconv"
	"time"
)

// Person запись реестра учащихся. Ключ реестра: Document.
type Person struct {
	Document string `json:"document"`
	FullName string `json:"full_name"`
	Group    string `json:"group"`
	Phone    string `json:"phone"`
}

// Event запись журнала движений. После создания не изменяется.
type Event struct {
	// ID присваивается только локально созданным событиям, у событий из таблицы он пуст.
	ID          string    `json:"id,omitempty"`
	EquipmentID string    `json:"equipment_id"`
	Type        Type      `json:"type"`
	Document    string    `json:"document"`
	FullName    string    `json:"full_name"`
	Group       string    `json:"group"`
	Phone       string    `json:"phone"`
	Professor   string    `json:"professor"`
	Subject     string    `json:"subject"`
	Comment     string    `json:"comment,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// IsLoan сообщает, является ли событие выдачей.
func (e *Event) IsLoan() bool {
	return e.Type == TypeLoan
}

// EquipmentState производное состояние единицы оборудования, не хранится.
type EquipmentState struct {
	EquipmentID  string `json:"equipment_id"`
	OnLoan       bool   `json:"on_loan"`
	FullName     string `json:"full_name,omitempty"`
	LastMovement *Event `json:"last_movement,omitempty"`
}

// EquipmentID переводит номер единицы в идентификатор, используемый в таблице.
func EquipmentID(unit int) string {
	return strconv.Itoa(unit)
}

// ParseUnit разбирает номер единицы и проверяет диапазон 1..total.
func ParseUnit(raw string, total int) (int, error) {
	unit, err := strconv.Atoi(raw)
	if err != nil || unit < 1 || unit > total {
		return 0, ErrUnknownEquipment
	}
	return unit, nil
}
