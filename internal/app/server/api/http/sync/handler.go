package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"equiploan/internal/app/client"
	"equiploan/internal/app/server/api/http/problem"
	"equiploan/internal/domain/inventory"
	"equiploan/internal/domain/movement"
	"equiploan/internal/utils/logger"
)

type Servicer interface {
	SyncNow(ctx context.Context) (*client.SyncResult, error)
	Stats() client.SyncStats
	Pending() []inventory.PendingEvent
	History(limit int) []*movement.Event
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
	huma.Register(api, h.syncOp(), h.sync)
	huma.Register(api, h.statusOp(), h.status)
	huma.Register(api, h.historyOp(), h.history)
}

func (h *Handler) sync(ctx context.Context, _ *struct{}) (*syncOutput, error) {
	res, err := h.service.SyncNow(ctx)
	if err != nil {
		h.log.Warn("Синхронизация по запросу не выполнена", logger.Err(err))
		return nil, problem.FromError(err)
	}
	return &syncOutput{Body: res}, nil
}

func (h *Handler) status(_ context.Context, _ *struct{}) (*statusOutput, error) {
	pending := h.service.Pending()
	items := make([]pendingItem, 0, len(pending))
	for _, p := range pending {
		items = append(items, pendingItem{Event: p.Event, AppendedAt: p.AppendedAt})
	}

	return &statusOutput{
		Body: statusResponse{
			Stats:   h.service.Stats(),
			Pending: items,
		},
	}, nil
}

func (h *Handler) history(_ context.Context, input *historyInput) (*historyOutput, error) {
	return &historyOutput{Body: h.service.History(input.Limit)}, nil
}
