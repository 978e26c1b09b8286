package chat

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ArtiomVlasov/messenger/internal/store"
)

// Session owns exactly one live socket. One goroutine runs the read loop
// below, a second drains the outbound queue (writer.go); the two only meet
// through the out channel and the closing signal.
type Session struct {
	conn  net.Conn
	br    *bufio.Reader
	codec Codec
	srv   *Server

	out       chan Message
	closing   chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	userName   string
	sessionID  string
	clientType string

	lastSeen atomic.Int64 // unix nanos, updated on every inbound frame

	logger *slog.Logger
}

func newSession(conn net.Conn, br *bufio.Reader, codec Codec, srv *Server) *Session {
	s := &Session{
		conn:    conn,
		br:      br,
		codec:   codec,
		srv:     srv,
		out:     make(chan Message, srv.outboundQueue),
		closing: make(chan struct{}),
		logger:  srv.logger,
	}
	s.touch()
	return s
}

func (s *Session) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userName
}

func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Session) ClientType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientType
}

func (s *Session) loggedIn() bool { return s.UserName() != "" }

// setIdentity is only called by Registry.Claim, under the registry lock.
func (s *Session) setIdentity(name, sessionID, clientType string) {
	s.mu.Lock()
	s.userName = name
	s.sessionID = sessionID
	s.clientType = clientType
	s.mu.Unlock()
}

func (s *Session) touch() { s.lastSeen.Store(time.Now().UnixNano()) }

func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// push enqueues an outbound message without ever blocking. A session whose
// queue is full is slow or already closing; the message is dropped rather
// than stalling the dispatcher or the monitor.
func (s *Session) push(m Message) {
	select {
	case s.out <- m:
	default:
	}
}

// reply enqueues a response to the session's own command. Unlike push it
// waits for queue room, aborting only if the session is shutting down.
func (s *Session) reply(m Message) {
	select {
	case s.out <- m:
	case <-s.closing:
	}
}

// run is the per-connection read loop: decode one frame, handle one command.
// Any I/O or decode failure is fatal to this connection only.
func (s *Session) run() {
	defer s.teardown()

	for {
		frame, err := readFrame(s.br)
		if err != nil {
			s.logReadError(err)
			return
		}
		msg, err := s.codec.Decode(frame)
		if err != nil {
			s.logger.Error("failed to decode frame", "codec", s.codec.Name(), "error", err)
			return
		}

		s.touch()

		start := time.Now()
		closed := s.handle(msg)
		kind := metricKind(msg.Kind)
		CommandsTotal.WithLabelValues(kind).Inc()
		CommandDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

		if closed {
			return
		}
	}
}

// handle runs one command through the state machine. It reports true when
// the session should close (logout).
func (s *Session) handle(msg Message) bool {
	switch msg.Kind {
	case KindLogin:
		s.handleLogin(msg)
	case KindSignup:
		s.handleSignup(msg)
	case KindMessage:
		s.handleChat(msg)
	case KindPing:
		// lastSeen is already updated for every frame; a valid ping has no
		// further effect and needs no reply.
		s.validateSession(msg)
	case KindList:
		s.handleList(msg)
	case KindLogout:
		if !s.validateSession(msg) {
			return false
		}
		s.reply(successMsg("bye"))
		return true
	default:
		s.reply(errorMsg("Unknown command: " + string(msg.Kind)))
	}
	return false
}

func (s *Session) handleSignup(msg Message) {
	if s.loggedIn() {
		s.reply(errorMsg("Already logged in"))
		return
	}
	if msg.Name == "" || msg.Password == "" {
		s.reply(errorMsg("Missing fields for signup"))
		return
	}
	if err := s.srv.creds.Register(msg.Name, msg.Password); err != nil {
		s.reply(errorMsg("User already exists"))
		return
	}
	s.logger.Info("user signed up", "user", msg.Name)
	s.reply(successMsg("Signup successful"))
}

func (s *Session) handleLogin(msg Message) {
	if s.loggedIn() {
		s.reply(errorMsg("Already logged in"))
		return
	}
	if msg.Name == "" || msg.Password == "" {
		s.reply(errorMsg("Missing fields for login"))
		return
	}

	if err := s.srv.creds.Verify(msg.Name, msg.Password); err != nil {
		switch {
		case errors.Is(err, store.ErrUnknownUser):
			s.reply(errorMsg("User does not exist"))
		default:
			s.reply(errorMsg("Incorrect password"))
		}
		return
	}

	sessionID := "session-" + uuid.NewString()
	if !s.srv.registry.Claim(s, msg.Name, sessionID, msg.ClientType) {
		s.reply(errorMsg("Name already taken"))
		return
	}

	s.logger.Info("user logged in", "user", msg.Name, "session_id", sessionID)
	s.reply(successWithSession("login OK", sessionID))
	s.srv.dispatcher.ReplayHistory(s)
	s.srv.dispatcher.AnnounceJoin(msg.Name, sessionID)
}

func (s *Session) handleChat(msg Message) {
	if !s.validateSession(msg) {
		return
	}
	if msg.Content == "" {
		s.reply(errorMsg("Empty message"))
		return
	}
	s.srv.dispatcher.Enqueue(store.ChatMessage{
		From:      s.UserName(),
		Content:   msg.Content,
		SessionID: s.SessionID(),
	})
}

func (s *Session) handleList(msg Message) {
	if !s.validateSession(msg) {
		return
	}

	sessions := s.srv.registry.LoggedIn()
	lines := make([]string, 0, len(sessions))
	for _, other := range sessions {
		lines = append(lines, other.UserName()+" ("+other.ClientType()+")")
	}
	sort.Strings(lines)
	s.reply(successMsg(strings.Join(lines, "\n")))
}

// validateSession rejects any command whose session id does not match the
// one assigned at login. Before login the assigned id is empty, so every
// session-carrying command is rejected in the Connected state too.
func (s *Session) validateSession(msg Message) bool {
	id := s.SessionID()
	if id == "" || msg.SessionID != id {
		s.reply(errorMsg("Invalid session"))
		return false
	}
	return true
}

// teardown is the single destruction path, safe to call from the read loop,
// the writer, the monitor and server shutdown. The first caller removes the
// session from the registry, unblocks the reader, and signals the writer to
// flush what is already queued and close the socket. The userlogout
// broadcast happens at most once, guarded by Remove's return value.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		removed := s.srv.registry.Remove(s)

		s.conn.SetReadDeadline(time.Now())
		s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		close(s.closing)

		if removed && s.loggedIn() {
			s.srv.dispatcher.AnnounceLeave(s.UserName(), s.SessionID())
		}
	})
}

func (s *Session) logReadError(err error) {
	select {
	case <-s.closing:
		return // expected: teardown unblocked the reader
	default:
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		s.logger.Info("client disconnected", "user", s.UserName())
		return
	}
	s.logger.Error("read failed", "user", s.UserName(), "error", err)
}

func metricKind(k Kind) string {
	switch k {
	case KindLogin, KindSignup, KindMessage, KindPing, KindLogout, KindList:
		return string(k)
	default:
		return "unknown"
	}
}
