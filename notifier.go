package authstate

import "context"

// NotificationLevel distinguishes informational from failure notices.
type NotificationLevel string

const (
	NoticeInfo  NotificationLevel = "info"
	NoticeError NotificationLevel = "error"
)

// Notification is a user-visible, dismissible message raised by the
// orchestrator. Every remote-call failure produces one describing the failure
// category; errors themselves never propagate into the presentation layer.
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
}

// Notifier delivers notifications to the presentation layer.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// LogNotifier writes notifications to a Logger. Useful for headless
// deployments and as a development default.
type LogNotifier struct {
	logger Logger
}

// NewLogNotifier returns a Notifier backed by the given logger.
func NewLogNotifier(logger Logger) *LogNotifier {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notice Notification) {
	if notice.Level == NoticeError {
		n.logger.Error("%s: %s", notice.Title, notice.Message)
		return
	}
	n.logger.Info("%s: %s", notice.Title, notice.Message)
}
