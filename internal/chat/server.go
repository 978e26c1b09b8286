package chat

import (
	"bufio"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ArtiomVlasov/messenger/internal/config"
	"github.com/ArtiomVlasov/messenger/internal/store"
)

const handshakeTimeout = 30 * time.Second

// Server accepts TCP clients, negotiates which codec each one speaks and
// runs a session per connection. The registry, dispatcher, monitor and the
// two stores are constructed once and passed around explicitly; there is no
// process-global state beyond the metrics collectors.
type Server struct {
	addr          string
	outboundQueue int

	logger     *slog.Logger
	registry   *Registry
	dispatcher *Dispatcher
	monitor    *Monitor
	creds      *store.Credentials
	history    *store.History

	listener net.Listener
	stopOnce sync.Once
}

func NewServer(cfg config.Config, creds *store.Credentials, history *store.History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry(logger)
	return &Server{
		addr:          cfg.ListenAddr,
		outboundQueue: cfg.OutboundQueue,
		logger:        logger,
		registry:      registry,
		dispatcher:    NewDispatcher(registry, history, cfg.InboundQueue, logger),
		monitor:       NewMonitor(registry, cfg.SweepInterval.Std(), cfg.PingTimeout.Std(), logger),
		creds:         creds,
		history:       history,
	}
}

// Addr returns the bound listen address, useful when the configured port was
// 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.dispatcher.Run()
	go s.monitor.Run()
	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("shutting down")

		if s.listener != nil {
			s.listener.Close()
		}

		for _, sess := range s.registry.All() {
			sess.teardown()
		}

		s.monitor.Stop()
		s.monitor.Wait()
		s.dispatcher.Stop()
		s.dispatcher.Wait()

		s.logger.Info("shutdown complete")
	})
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// listener closed, normal shutdown
			return
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())
		go s.handshake(conn)
	}
}

// handshake reads the line-delimited protocol tag the client sends right
// after connecting, picks the matching codec and runs the session. An
// unrecognized tag closes the socket.
func (s *Server) handshake(conn net.Conn) {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	br := bufio.NewReader(conn)
	tag, err := br.ReadString('\n')
	if err != nil {
		s.logger.Warn("handshake failed", "addr", conn.RemoteAddr().String(), "error", err)
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	codec := codecForTag(tag)
	if codec == nil {
		s.logger.Warn("unknown protocol tag", "addr", conn.RemoteAddr().String(), "tag", strings.TrimSpace(tag))
		conn.Close()
		return
	}

	sess := newSession(conn, br, codec, s)
	s.registry.Add(sess)
	sess.startWriter()
	sess.run()
}

func codecForTag(tag string) Codec {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "xml":
		return NewXMLCodec()
	case "serial", "serialisation", "gob":
		return NewGobCodec()
	default:
		return nil
	}
}
