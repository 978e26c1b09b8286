package chat

import (
	"log/slog"
	"time"
)

// Monitor periodically sweeps every registered session and evicts the ones
// that have gone quiet. This is the only eviction path besides an explicit
// logout or a read/write failure.
type Monitor struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   *slog.Logger
}

func NewMonitor(registry *Registry, interval, timeout time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopCh:
			return
		}
	}
}

// Stop signals the Run loop to exit.
func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (m *Monitor) Wait() {
	<-m.doneCh
}

// sweep evicts every session whose last inbound frame is older than the
// timeout. The final error is queued before teardown so the writer can still
// flush it; teardown handles removal, socket close and the one userlogout
// broadcast for authenticated sessions.
func (m *Monitor) sweep() {
	now := time.Now()
	for _, s := range m.registry.All() {
		if now.Sub(s.LastSeen()) <= m.timeout {
			continue
		}
		if user := s.UserName(); user != "" {
			m.logger.Warn("session timed out", "user", user, "session_id", s.SessionID())
		}
		s.push(errorMsg("Disconnected due to inactivity"))
		s.teardown()
		EvictionsTotal.Inc()
	}
}
