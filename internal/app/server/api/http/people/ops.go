package people

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "people-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/people",
		Summary:     "Реестр учащихся",
		Tags:        []string{"people"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "people-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/people/{document}",
		Summary:     "Найти учащегося по документу",
		Tags:        []string{"people"},
		Middlewares: h.middleware,
	}
}
