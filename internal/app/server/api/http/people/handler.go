package people

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"equiploan/internal/app/server/api/http/problem"
	"equiploan/internal/domain/movement"
)

type Servicer interface {
	People() []movement.Person
	CheckDocument(document string) (movement.Person, error)
}

type Handler struct {
	service    Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.findOp(), h.find)
}

func (h *Handler) list(_ context.Context, _ *struct{}) (*listOutput, error) {
	return &listOutput{Body: h.service.People()}, nil
}

func (h *Handler) find(_ context.Context, input *findInput) (*findOutput, error) {
	person, err := h.service.CheckDocument(input.Document)
	if err != nil {
		return nil, problem.FromError(err)
	}
	return &findOutput{Body: person}, nil
}
