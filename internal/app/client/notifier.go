package client

import (
	"golang.org/x/exp/slog"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier слой отображения: перерисовка сетки и сообщения пользователю.
type Notifier interface {
	RefreshAll()
	Notify(message string, severity Severity)
}

// LogNotifier пишет уведомления в лог. Используется, когда интерфейса нет (сервер, разовые команды).
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(slog.String("component", "notifier"))}
}

func (n *LogNotifier) RefreshAll() {
	n.log.Debug("Обновление сетки")
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	switch severity {
	case SeverityError:
		n.log.Error(message)
	case SeverityWarning:
		n.log.Warn(message)
	default:
		n.log.Info(message, "severity", string(severity))
	}
}

// NotifierFuncs собирает Notifier из функций; пустые поля игнорируются.
type NotifierFuncs struct {
	OnRefresh func()
	OnNotify  func(message string, severity Severity)
}

func (f NotifierFuncs) RefreshAll() {
	if f.OnRefresh != nil {
		f.OnRefresh()
	}
}

func (f NotifierFuncs) Notify(message string, severity Severity) {
	if f.OnNotify != nil {
		f.OnNotify(message, severity)
	}
}
