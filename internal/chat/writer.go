package chat

import "bufio"

// startWriter launches the session's dedicated writer goroutine. It is the
// only code that writes to the socket after the handshake, and it owns the
// final close: on shutdown it flushes whatever is already queued (a logout
// ack or an eviction error) before releasing the connection.
func (s *Session) startWriter() {
	go func() {
		defer s.conn.Close()

		w := bufio.NewWriter(s.conn)
		for {
			select {
			case m := <-s.out:
				if !s.writeMessage(w, m) {
					s.teardown()
					return
				}
			case <-s.closing:
				for {
					select {
					case m := <-s.out:
						if !s.writeMessage(w, m) {
							return
						}
					default:
						return
					}
				}
			}
		}
	}()
}

func (s *Session) writeMessage(w *bufio.Writer, m Message) bool {
	payload, err := s.codec.Encode(m)
	if err != nil {
		// Encoding a server-built message should never fail; skip it and
		// keep the connection.
		s.logger.Error("failed to encode frame", "codec", s.codec.Name(), "error", err)
		return true
	}
	if err := writeFrame(w, payload); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	return true
}
