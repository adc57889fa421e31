package equipment

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "equipment-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/equipment",
		Summary:     "Сетка оборудования",
		Tags:        []string{"equipment"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "equipment-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/equipment/{id}",
		Summary:     "Состояние единицы",
		Tags:        []string{"equipment"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) loanOp() huma.Operation {
	return huma.Operation{
		OperationID:   "equipment-loan",
		Method:        http.MethodPost,
		Path:          "/api/v1/equipment/{id}/loan",
		Summary:       "Выдать единицу",
		Description:   "Отправляет форму выдачи и применяет событие локально. Ответ означает только, что форма отправлена.",
		Tags:          []string{"equipment"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) returnOp() huma.Operation {
	return huma.Operation{
		OperationID:   "equipment-return",
		Method:        http.MethodPost,
		Path:          "/api/v1/equipment/{id}/return",
		Summary:       "Оформить возврат",
		Description:   "Данные учащегося берутся из последней выдачи этой единицы.",
		Tags:          []string{"equipment"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   h.middleware,
	}
}
