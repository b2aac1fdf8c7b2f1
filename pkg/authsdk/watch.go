package authsdk

import "context"

// Watch ties a Monitor to a Coordinator: the warning transition starts the
// countdown, and the countdown stops as soon as the session leaves the
// warning window in either direction.
type Watch struct {
	Monitor     *Monitor
	Coordinator *Coordinator
}

func NewWatch(m *Monitor, c *Coordinator) *Watch {
	m.OnWarning(c.Activate)
	m.OnState(func(s State) {
		if s.Status != StatusWarning {
			c.Dismiss()
		}
	})
	return &Watch{Monitor: m, Coordinator: c}
}

// Start begins polling.
func (w *Watch) Start(ctx context.Context) {
	w.Monitor.Start(ctx)
}

// Close stops polling and any countdown and waits for both goroutines,
// except the one it is called from.
func (w *Watch) Close() {
	w.Monitor.Stop()
	w.Coordinator.Close()
}
