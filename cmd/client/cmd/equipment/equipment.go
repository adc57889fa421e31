package equipment

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"equiploan/internal/domain/movement"
)

var EquipmentCmd = &cobra.Command{
	Use:     "equipment",
	Aliases: []string{"eq"},
	Short:   "Состояние, выдача и возврат оборудования",
	Long: `Команды для просмотра сетки оборудования, выдачи единицы учащемуся
и оформления возврата.`,
}

// explain переводит ошибку проверки в сообщение для пользователя
func explain(err error) error {
	switch {
	case errors.Is(err, movement.ErrUnknownDocument):
		return fmt.Errorf("документ не найден в реестре: %w", err)
	case errors.Is(err, movement.ErrInvalidDocument), errors.Is(err, movement.ErrMissingDocument):
		return fmt.Errorf("некорректный номер документа: %w", err)
	case errors.Is(err, movement.ErrAlreadyOnLoan):
		return fmt.Errorf("оборудование уже выдано: %w", err)
	case errors.Is(err, movement.ErrNotOnLoan):
		return fmt.Errorf("оборудование не выдано: %w", err)
	case errors.Is(err, movement.ErrUnknownEquipment):
		return fmt.Errorf("неизвестная единица оборудования: %w", err)
	case errors.Is(err, movement.ErrSubmissionTransport):
		return fmt.Errorf("не удалось отправить форму, повторите попытку: %w", err)
	default:
		return err
	}
}
