package chat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds an inbound length prefix. Anything larger is treated as
// a broken or hostile stream and kills that connection.
const MaxFrameSize = 1 << 20

// Codec turns one Message into a byte frame and back. The gob and XML
// implementations are interchangeable: for the same logical command they must
// decode to identical Message values. Which codec a session speaks is fixed
// once by the protocol-tag handshake.
type Codec interface {
	Name() string
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
}

// readFrame reads one length-prefixed frame: a 4-byte big-endian length
// followed by that many payload bytes.
func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length == 0 || length > MaxFrameSize {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
