// GET  /api/v1/health                  # Состояние сервиса
// GET  /api/v1/equipment               # Сетка оборудования (?on_loan=true)
// GET  /api/v1/equipment/{id}          # Состояние единицы
// POST /api/v1/equipment/{id}/loan     # Выдача
// POST /api/v1/equipment/{id}/return   # Возврат
// GET  /api/v1/people                  # Реестр
// GET  /api/v1/people/{document}       # Учащийся по документу
// POST /api/v1/sync                    # Синхронизация по требованию
// GET  /api/v1/sync/status             # Статистика и неподтвержденные события
// GET  /api/v1/history                 # Журнал движений
// GET  /metrics                        # Prometheus

package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	equipmentAPI "equiploan/internal/app/server/api/http/equipment"
	healthAPI "equiploan/internal/app/server/api/http/health"
	"equiploan/internal/app/server/api/http/middleware"
	"equiploan/internal/app/server/api/http/middleware/logger"
	"equiploan/internal/app/server/api/http/middleware/metrics"
	peopleAPI "equiploan/internal/app/server/api/http/people"
	syncAPI "equiploan/internal/app/server/api/http/sync"
)

// Service все, что API использует из ядра учета
type Service interface {
	healthAPI.StatsProvider
	equipmentAPI.Servicer
	peopleAPI.Servicer
	syncAPI.Servicer
}

type Handlers struct {
	Health    *healthAPI.Handler
	Equipment *equipmentAPI.Handler
	People    *peopleAPI.Handler
	Sync      *syncAPI.Handler
}

// New создает *chi.Mux с операциями huma и /metrics из реестра reg
func New(service Service, reg *prometheus.Registry, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.Recoverer)

	config := huma.DefaultConfig("Equiploan API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(service, reg, log)
	h.Health.SetupRoutes(API)
	h.Equipment.SetupRoutes(API)
	h.People.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

func handlers(service Service, reg prometheus.Registerer, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	metricsMW := metrics.New(reg)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(service, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware())
	equipmentHandler := equipmentAPI.NewHandler(service, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware())
	peopleHandler := peopleAPI.NewHandler(service, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), metricsMW.Middleware())
	syncHandler := syncAPI.NewHandler(service, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:    healthHandler,
		Equipment: equipmentHandler,
		People:    peopleHandler,
		Sync:      syncHandler,
	}
}
