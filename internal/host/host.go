// Package host binds a Lifecycle to the humacli start/stop hooks.
package host

import (
	"sync"

	"github.com/danielgtaylor/huma/v2/humacli"
)

// Lifecycle receives the host's startup and shutdown notifications.
type Lifecycle interface {
	OnSetupComplete()
	OnExitRequested()
}

// Bind registers l on hooks. The start hook runs OnSetupComplete and then
// blocks until the stop hook has run OnExitRequested; humacli treats a
// returning start hook as the service finishing on its own. Repeated stop
// calls are ignored.
func Bind(hooks humacli.Hooks, l Lifecycle) {
	stopped := make(chan struct{})
	var once sync.Once

	hooks.OnStart(func() {
		l.OnSetupComplete()
		<-stopped
	})
	hooks.OnStop(func() {
		once.Do(func() {
			l.OnExitRequested()
			close(stopped)
		})
	})
}
