package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"equiploan/internal/app/client"
)

// StatsProvider источник статистики синхронизации
type StatsProvider interface {
	Stats() client.SyncStats
}

type Handler struct {
	stats      StatsProvider
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(stats StatsProvider, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		stats:      stats,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck отвечает OK, пока есть хотя бы одна успешная синхронизация, иначе DEGRADED
func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	stats := h.stats.Stats()
	status := "OK"
	if stats.LastSuccessful.IsZero() || stats.LastFailed.After(stats.LastSuccessful) {
		status = "DEGRADED"
	}

	return &Output{
		Body: Response{
			Status:         status,
			Syncing:        stats.InProgress,
			LastSuccessful: stats.LastSuccessful,
			LastError:      stats.LastError,
		},
	}, nil
}
