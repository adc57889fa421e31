// cmd/client/cmd/root.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"equiploan/cmd/client/cmd/cli"
	"equiploan/internal/app/client"
	"equiploan/internal/app/client/config"
	shared "equiploan/internal/config"
	"equiploan/internal/utils/logger"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	debugMode  bool
	jsonOutput bool
	noColor    bool
	offline    bool
)

var rootCmd = &cobra.Command{
	Use:   "equiploan",
	Short: "equiploan - учет выдачи оборудования",
	Long: `equiploan ведет учет выдачи и возврата пронумерованных единиц оборудования.

Реестр учащихся и журнал движений хранятся в опубликованных таблицах,
новые события отправляются через веб-форму. Состояние каждой единицы
вычисляется по журналу.`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: teardownApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cli.ConfigureColor(noColor)
	cli.Out.JSON = jsonOutput

	var err error
	cfg, err = config.Load(resolveConfigFile())
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if debugMode {
		cfg.Env = shared.EnvLocal
	}
	log = logger.New(cfg.Env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	if offline || cmd.Annotations[cli.AnnotationSelfInit] != "" {
		if _, err := app.LoadSnapshot(cmd.Context()); err != nil {
			log.Warn("Снимок не загружен", logger.Err(err))
		}
	} else {
		app.Init(cmd.Context())
	}

	cmd.SetContext(cli.WithApp(cmd.Context(), app))
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) {
	if app != nil {
		app.Shutdown()
	}
}

// resolveConfigFile файл из флага или ~/.equiploan/config.yaml, если он существует
func resolveConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".equiploan", "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "отключить цветной вывод")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "работать с сохраненным снимком без синхронизации")
}
