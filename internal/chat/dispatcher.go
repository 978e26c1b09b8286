package chat

import (
	"log/slog"

	"github.com/ArtiomVlasov/messenger/internal/store"
)

// Dispatcher is the single broadcaster of chat messages. Sessions enqueue;
// one consumer goroutine drains the inbound channel with a blocking receive
// and fans each message out to every logged-in session's outbound queue. All
// observers therefore see broadcasts in the same order.
type Dispatcher struct {
	registry *Registry
	history  *store.History
	inbound  chan store.ChatMessage
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, history *store.History, buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 128
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		history:  history,
		inbound:  make(chan store.ChatMessage, buffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Enqueue durably appends the message to history, then hands it to the
// consumer. Called from session read loops.
func (d *Dispatcher) Enqueue(msg store.ChatMessage) {
	d.history.Append(msg)
	select {
	case d.inbound <- msg:
	case <-d.stopCh:
	}
}

func (d *Dispatcher) Run() {
	defer close(d.doneCh)
	for {
		select {
		case msg := <-d.inbound:
			d.broadcast(msg)
		case <-d.stopCh:
			return
		}
	}
}

// Stop signals the Run loop to exit.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (d *Dispatcher) Wait() {
	<-d.doneCh
}

// broadcast fans one chat message out. The originator gets its own copy with
// the sender rewritten to "You"; a session that disconnects mid-broadcast
// simply misses the message.
func (d *Dispatcher) broadcast(msg store.ChatMessage) {
	for _, s := range d.registry.LoggedIn() {
		from := msg.From
		if s.SessionID() == msg.SessionID {
			from = "You"
		}
		s.push(chatEvent(from, msg.Content))
	}
	BroadcastsTotal.Inc()
	d.logger.Info("broadcast message", "from", msg.From, "session_id", msg.SessionID)
}

// AnnounceJoin sends a userlogin event to every logged-in session except the
// one that just joined.
func (d *Dispatcher) AnnounceJoin(name, excludeSessionID string) {
	d.announce(EventUserLogin, name, excludeSessionID)
}

// AnnounceLeave sends a userlogout event to every remaining logged-in
// session.
func (d *Dispatcher) AnnounceLeave(name, excludeSessionID string) {
	d.announce(EventUserLogout, name, excludeSessionID)
}

func (d *Dispatcher) announce(event, name, excludeSessionID string) {
	for _, s := range d.registry.LoggedIn() {
		if s.SessionID() == excludeSessionID {
			continue
		}
		s.push(userEvent(event, name))
	}
	d.logger.Info("broadcast "+event, "user", name)
}

// ReplayHistory sends the bounded chat history to one freshly authenticated
// session, and to no one else. Uses the session's blocking reply path so the
// replay is not truncated by queue pressure.
func (d *Dispatcher) ReplayHistory(s *Session) {
	for _, msg := range d.history.Snapshot() {
		from := msg.From
		if msg.SessionID == s.SessionID() {
			from = "You"
		}
		s.reply(chatEvent(from, msg.Content))
	}
}
