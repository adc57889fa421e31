// cmd/server/cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"equiploan/internal/app/client"
	"equiploan/internal/app/server/api"
	"equiploan/internal/app/server/config"
	"equiploan/internal/infrastructure/storage"
	"equiploan/internal/infrastructure/storage/postgres"
	"equiploan/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "equiploan-server",
	Short: "equiploan-server - HTTP API учета выдачи оборудования",
	Long: `equiploan-server синхронизирует реестр и журнал движений в фоне
и отдает состояние оборудования через HTTP API. Выдача и возврат
отправляются через ту же веб-форму, что и в CLI.`,
	Args:          cobra.NoArgs,
	RunE:          runServer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	log := logger.New(conf.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, err := openSnapshots(ctx, conf)
	if err != nil {
		return fmt.Errorf("ошибка инициализации хранилища снимков: %w", err)
	}

	app, err := client.New(conf.Client, log, client.WithSnapshots(snapshots))
	if err != nil {
		_ = snapshots.Close()
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}
	defer app.Shutdown()

	srv := &http.Server{
		Addr:              conf.Server.RunAddress,
		Handler:           api.New(app, app.Metrics().Registry(), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Сервер запущен", slog.String("address", srv.Addr), slog.String("snapshots", conf.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Сервер остановлен с ошибкой", logger.Err(err))
		return err
	}
	return nil
}

func openSnapshots(ctx context.Context, conf *config.Config) (storage.SnapshotRepository, error) {
	switch conf.DB.Driver {
	case config.SnapshotPostgres:
		return postgres.New(ctx, conf.DB.DatabaseURI)
	default:
		return client.NewSQLiteStorage(conf.Client.DataPath)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
}
