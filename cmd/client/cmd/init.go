// cmd/client/cmd/init.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	debugcmd "equiploan/cmd/client/cmd/debug"
	"equiploan/cmd/client/cmd/equipment"
	"equiploan/cmd/client/cmd/sync"
	"equiploan/cmd/client/cmd/watch"
)

const configTemplate = `# equiploan
APP_ENV: local
ROSTER_URL: %s
HISTORY_URL: %s
FORM_URL: %s
TOTAL_UNITS: 40
SYNC_INTERVAL_MS: 30000
SUBMISSION_SETTLE_MS: 1500
RETRY_ATTEMPTS: 3
RETRY_DELAY_MS: 1000
RETRY_BACKOFF: fixed
SNAPSHOT_ENABLED: true
`

var (
	initRoster  string
	initHistory string
	initForm    string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Создать файл конфигурации",
	Long: `Команда init создает ~/.equiploan/config.yaml с адресами таблиц и формы.

Адреса можно передать флагами или отредактировать файл позже.
Все параметры также переопределяются переменными окружения.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	PersistentPostRun: func(_ *cobra.Command, _ []string) {},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("не удалось определить домашний каталог: %w", err)
			}
			path = filepath.Join(home, ".equiploan", "config.yaml")
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			fmt.Printf("Конфигурация уже существует: %s\n", path)
			fmt.Println("Используйте --force для перезаписи.")
			return nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ошибка проверки файла: %w", err)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("ошибка создания каталога: %w", err)
		}

		content := fmt.Sprintf(configTemplate, initRoster, initHistory, initForm)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return fmt.Errorf("ошибка записи конфигурации: %w", err)
		}

		fmt.Println("✅ Конфигурация создана:", path)
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Проверьте адреса таблиц и формы в файле конфигурации")
		fmt.Println("2. Загрузите данные: equiploan sync")
		fmt.Println("3. Посмотрите состояние: equiploan equipment list")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initRoster, "roster-url", "", "адрес таблицы реестра")
	initCmd.Flags().StringVar(&initHistory, "history-url", "", "адрес таблицы журнала")
	initCmd.Flags().StringVar(&initForm, "form-url", "", "адрес отправки формы")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "перезаписать существующий файл")
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(equipment.EquipmentCmd)
	equipment.EquipmentCmd.AddCommand(equipment.ListCmd)
	equipment.EquipmentCmd.AddCommand(equipment.ShowCmd)
	equipment.EquipmentCmd.AddCommand(equipment.LoanCmd)
	equipment.EquipmentCmd.AddCommand(equipment.ReturnCmd)

	rootCmd.AddCommand(debugcmd.DebugCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.PeopleCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.HistoryCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.LoansCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.FindCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.CheckCmd)
	debugcmd.DebugCmd.AddCommand(debugcmd.ResetCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(watch.WatchCmd)
}
