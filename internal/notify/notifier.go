package notify

import (
	log "github.com/sirupsen/logrus"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ユーザー向け通知の出口（トースト相当）。
type Notifier interface {
	Notify(message string, severity Severity)
}

// logrusに流す通知先。表示側が無いときのフォールバックでもある。
type LogNotifier struct {
	log *log.Logger
}

// DI
func NewLogNotifier(l *log.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) Notify(message string, severity Severity) {
	entry := n.log.WithField("severity", string(severity))

	switch severity {
	case SeverityError:
		entry.Error(message)
	case SeverityWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// Default は標準ロガーに流す通知先を返す。
func Default() Notifier {
	return NewLogNotifier(log.StandardLogger())
}
