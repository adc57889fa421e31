package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"equiploan/internal/app/client"
	"equiploan/internal/domain/movement"
)

type appKey struct{}

// AnnotationSelfInit команда сама выполняет первую синхронизацию
const AnnotationSelfInit = "self-init"

// WithApp кладет приложение в контекст команды
func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// AppFrom достает приложение из контекста команды
func AppFrom(ctx context.Context) (*client.App, error) {
	app, ok := ctx.Value(appKey{}).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// Output общие параметры вывода
type Output struct {
	W    io.Writer
	JSON bool
}

var Out = Output{W: os.Stdout}

// ConfigureColor отключает цвета, если вывод не в терминал или это запрошено флагом
func ConfigureColor(noColor bool) {
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// PrintJSON печатает значение в JSON
func (o Output) PrintJSON(v any) error {
	enc := json.NewEncoder(o.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusLabel цветная метка состояния единицы
func StatusLabel(st movement.EquipmentState) string {
	if st.OnLoan {
		return color.RedString("выдано")
	}
	return color.GreenString("свободно")
}

// FormatTime время в локальном формате или прочерк
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// SeverityColor печать уведомления с цветом по важности
func SeverityColor(severity client.Severity) func(format string, a ...interface{}) string {
	switch severity {
	case client.SeveritySuccess:
		return color.GreenString
	case client.SeverityWarning:
		return color.YellowString
	case client.SeverityError:
		return color.RedString
	default:
		return color.CyanString
	}
}
