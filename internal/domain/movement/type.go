package movement

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

type Type string

const (
	TypeLoan    Type = "Loan"
	TypeReturn  Type = "Return"
	TypeUnknown Type = "Unknown"
)

// Значения колонки «tipo» в таблице истории и в форме
const (
	wireLoan   = "Préstamo"
	wireReturn = "Devolución"
)

func (Type) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(TypeLoan),
			string(TypeReturn),
			string(TypeUnknown),
		},
		Description: "Тип движения оборудования",
		Examples:    []any{TypeLoan},
	}
}

// ParseType разбирает тип движения из ячейки таблицы.
// Принимает как значения формы (Préstamo/Devolución), так и Loan/Return.
// Непустое нераспознанное значение дает TypeUnknown.
func ParseType(raw string) Type {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return ""
	case strings.EqualFold(s, wireLoan), strings.EqualFold(s, "Prestamo"), strings.EqualFold(s, string(TypeLoan)):
		return TypeLoan
	case strings.EqualFold(s, wireReturn), strings.EqualFold(s, "Devolucion"), strings.EqualFold(s, string(TypeReturn)):
		return TypeReturn
	}
	return TypeUnknown
}

// Validate проверяет, что тип допустим для отправки.
func (t Type) Validate() error {
	switch t {
	case TypeLoan, TypeReturn:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
}

// String возвращает строковое представление типа.
func (t Type) String() string {
	return string(t)
}

// WireValue возвращает значение, которое ожидает форма.
func (t Type) WireValue() string {
	switch t {
	case TypeLoan:
		return wireLoan
	case TypeReturn:
		return wireReturn
	default:
		return string(t)
	}
}

// DisplayName возвращает человекочитаемое название типа.
func (t Type) DisplayName() string {
	switch t {
	case TypeLoan:
		return "Выдача"
	case TypeReturn:
		return "Возврат"
	default:
		return "Неизвестный тип"
	}
}
