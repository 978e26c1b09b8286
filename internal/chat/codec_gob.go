package chat

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// gobCodec is the binary wire format: one gob-encoded Message per frame.
type gobCodec struct{}

// NewGobCodec returns the binary record codec.
func NewGobCodec() Codec { return gobCodec{} }

func (gobCodec) Name() string { return "gob" }

func (gobCodec) Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Decode(frame []byte) (Message, error) {
	var m Message
	if err := gob.NewDecoder(bytes.NewReader(frame)).Decode(&m); err != nil {
		return Message{}, fmt.Errorf("gob decode: %w", err)
	}
	return m, nil
}
