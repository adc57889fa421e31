package equipment

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"equiploan/internal/app/client"
	"equiploan/internal/app/server/api/http/problem"
	"equiploan/internal/domain/movement"
	"equiploan/internal/utils/logger"
)

// Servicer операции над оборудованием
type Servicer interface {
	Grid() []movement.EquipmentState
	ActiveLoans() []movement.EquipmentState
	State(equipmentID string) (movement.EquipmentState, error)
	Loan(ctx context.Context, equipmentID, document, professor, subject string) (*client.SubmitResult, error)
	Return(ctx context.Context, equipmentID, comment string) (*client.SubmitResult, error)
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
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.loanOp(), h.loan)
	huma.Register(api, h.returnOp(), h.returnUnit)
}

func (h *Handler) list(_ context.Context, input *listInput) (*listOutput, error) {
	grid := h.service.Grid()

	onLoan := 0
	for _, st := range grid {
		if st.OnLoan {
			onLoan++
		}
	}

	items := grid
	if input.OnLoan {
		items = h.service.ActiveLoans()
	}

	return &listOutput{
		Body: listResponse{
			Total:  len(grid),
			OnLoan: onLoan,
			Items:  items,
		},
	}, nil
}

func (h *Handler) get(_ context.Context, input *getInput) (*getOutput, error) {
	st, err := h.service.State(input.ID)
	if err != nil {
		return nil, problem.FromError(err)
	}
	return &getOutput{Body: st}, nil
}

func (h *Handler) loan(ctx context.Context, input *loanInput) (*submitOutput, error) {
	res, err := h.service.Loan(ctx, input.ID, input.Body.Document, input.Body.Professor, input.Body.Subject)
	if err != nil {
		h.log.Info("Выдача отклонена", slog.String("equipment_id", input.ID), logger.Err(err))
		return nil, problem.FromError(err)
	}
	return &submitOutput{Body: res}, nil
}

func (h *Handler) returnUnit(ctx context.Context, input *returnInput) (*submitOutput, error) {
	res, err := h.service.Return(ctx, input.ID, input.Body.Comment)
	if err != nil {
		h.log.Info("Возврат отклонен", slog.String("equipment_id", input.ID), logger.Err(err))
		return nil, problem.FromError(err)
	}
	return &submitOutput{Body: res}, nil
}
