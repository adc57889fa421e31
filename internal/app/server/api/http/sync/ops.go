package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) syncOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Синхронизация по требованию",
		Description: "Загружает реестр и журнал. Если синхронизация уже выполняется, возвращает 409.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/status",
		Summary:     "Статистика синхронизации",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) historyOp() huma.Operation {
	return huma.Operation{
		OperationID: "history-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Журнал движений, новые сверху",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
