// Package systemd reports service state to systemd when running as a unit.
package systemd

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/sidecar/internal/logging"
)

// notifyFunc matches daemon.SdNotify.
type notifyFunc func(unsetEnvironment bool, state string) (bool, error)

// Notifier sends sd_notify messages. Outside systemd (no NOTIFY_SOCKET) every
// call is a no-op.
type Notifier struct {
	notify notifyFunc
	logger logging.Logger
}

// NewNotifier creates a notifier backed by daemon.SdNotify.
func NewNotifier(logger logging.Logger) *Notifier {
	return &Notifier{notify: daemon.SdNotify, logger: logger}
}

// Ready reports that startup has finished.
func (n *Notifier) Ready() {
	n.send(daemon.SdNotifyReady)
}

// Stopping reports that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("Notified systemd", "state", state)
	}
}
