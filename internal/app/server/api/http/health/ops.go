package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "service-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Состояние сервиса",
		Description: "OK, если последняя синхронизация с таблицами прошла успешно. " +
			"DEGRADED, если успешной синхронизации еще не было или последняя попытка завершилась ошибкой; " +
			"в этом случае ответ содержит текст ошибки, а данные остаются последними загруженными.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
