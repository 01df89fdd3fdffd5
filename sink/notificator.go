package sink

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"keyinvader/keylog"
)

type Notificator interface {
	Notify(title, message string) error
}

// MacNotificator shows notifications through osascript.
type MacNotificator struct{}

// notifyScript reads title and message from argv so neither needs AppleScript
// quoting.
const notifyScript = `on run argv
display notification (item 2 of argv) with title "keyinvader" subtitle (item 1 of argv) sound name "Blow"
end run`

func notifyArgs(title, message string) []string {
	return []string{"-e", notifyScript, title, message}
}

func (no *MacNotificator) Notify(title string, message string) error {
	var errOut bytes.Buffer
	cmd := exec.Command("osascript", notifyArgs(title, message)...)
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(errOut.String()))
	}
	return nil
}

// NotifySink raises a desktop notification when tracking ends.
type NotifySink struct {
	notificator Notificator
	logger      *slog.Logger
}

func NewNotifySink(notificator Notificator, logger *slog.Logger) *NotifySink {
	return &NotifySink{notificator: notificator, logger: logger}
}

func (s *NotifySink) Update(src keylog.Source) error {
	e := src.Current()
	if !e.Kind.Terminal() {
		return nil
	}
	if err := s.notificator.Notify("tracking stopped", e.Text()); err != nil {
		s.logger.Error("desktop notification", slog.String("err", err.Error()))
		return err
	}
	return nil
}
