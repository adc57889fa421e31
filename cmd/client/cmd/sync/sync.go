package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
	"equiploan/internal/app/client"
)

var syncStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с таблицами",
	Long: `Загружает реестр и журнал движений и целиком заменяет ими локальные данные.

Если один из источников недоступен после всех попыток, локальные данные
не изменяются. С --status показывает состояние по сохраненному снимку.`,
	Annotations: map[string]string{cli.AnnotationSelfInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		if syncStatus {
			return showSyncStatus(app)
		}
		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	if !cli.Out.JSON {
		fmt.Fprintln(cli.Out.W, "=== Синхронизация данных ===")
	}

	result, err := app.SyncNow(ctx)
	if errors.Is(err, client.ErrSyncInProgress) {
		fmt.Fprintln(cli.Out.W, "⚠️  Синхронизация уже выполняется")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	if cli.Out.JSON {
		return cli.Out.PrintJSON(result)
	}

	w := cli.Out.W
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✅ Синхронизация завершена!")
	fmt.Fprintf(w, "Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Учащихся в реестре: %d\n", result.People)
	fmt.Fprintf(w, "Событий в журнале: %d\n", result.Events)
	if result.Merge.Confirmed > 0 {
		fmt.Fprintf(w, "Подтверждено локальных событий: %d\n", result.Merge.Confirmed)
	}
	if result.Merge.Pending > 0 {
		fmt.Fprintf(w, "Ожидают подтверждения: %d\n", result.Merge.Pending)
	}
	if result.Merge.Expired > 0 {
		fmt.Fprintf(w, "⚠️  Не подтверждено таблицей и отброшено: %d\n", result.Merge.Expired)
	}
	return nil
}

func showSyncStatus(app *client.App) error {
	stats := app.Stats()
	pending := app.Pending()
	loans := app.ActiveLoans()

	if cli.Out.JSON {
		return cli.Out.PrintJSON(map[string]any{
			"stats":        stats,
			"pending":      len(pending),
			"active_loans": len(loans),
			"people":       len(app.People()),
		})
	}

	w := cli.Out.W
	fmt.Fprintln(w, "=== Статус синхронизации ===")
	fmt.Fprintf(w, "📊 Учащихся в реестре: %d\n", len(app.People()))
	fmt.Fprintf(w, "   Выдано единиц: %d из %d\n", len(loans), app.TotalUnits())
	fmt.Fprintf(w, "   Ожидают подтверждения: %d\n", len(pending))
	for _, p := range pending {
		fmt.Fprintf(w, "   • №%s %s, %s (добавлено %s)\n",
			p.Event.EquipmentID, p.Event.Type.DisplayName(), p.Event.FullName, cli.FormatTime(p.AppendedAt))
	}

	if !stats.LastSuccessful.IsZero() {
		fmt.Fprintf(w, "⏰ Последняя успешная: %s\n", cli.FormatTime(stats.LastSuccessful))
	}
	if stats.LastError != "" {
		fmt.Fprintf(w, "❌ Последняя ошибка: %s\n", stats.LastError)
	}
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус по сохраненному снимку")
}
