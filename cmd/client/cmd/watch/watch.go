package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"equiploan/cmd/client/cmd/cli"
	"equiploan/internal/app/client"
)

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Следить за состоянием оборудования",
	Long: `Запускает периодическую синхронизацию и перерисовывает сетку
после каждого обновления. Завершение по Ctrl+C.`,
	Annotations: map[string]string{cli.AnnotationSelfInit: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.AppFrom(cmd.Context())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app.SetNotifier(newTerminalNotifier(app))
		return app.Run(ctx)
	},
}

// terminalNotifier перерисовывает сетку и печатает уведомления в терминал
type terminalNotifier struct {
	app *client.App
}

func newTerminalNotifier(app *client.App) *terminalNotifier {
	return &terminalNotifier{app: app}
}

func (n *terminalNotifier) RefreshAll() {
	w := cli.Out.W
	if cli.Out.JSON {
		_ = cli.Out.PrintJSON(n.app.Grid())
		return
	}
	fmt.Fprint(w, "\033[H\033[2J")
	fmt.Fprintf(w, "Обновлено: %s\n\n", time.Now().Format("15:04:05"))
	cli.RenderGrid(w, n.app.Grid())
}

func (n *terminalNotifier) Notify(message string, severity client.Severity) {
	paint := cli.SeverityColor(severity)
	fmt.Fprintln(os.Stderr, paint("[%s] %s", severity, message))
}

var _ client.Notifier = (*terminalNotifier)(nil)
