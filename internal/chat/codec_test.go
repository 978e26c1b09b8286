package chat

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var wireMessages = []Message{
	{Kind: KindLogin, Name: "alice", Password: "pw1", ClientType: "cli"},
	{Kind: KindSignup, Name: "bob", Password: "pw2", ClientType: "gui"},
	{Kind: KindMessage, Content: "hello there", SessionID: "session-abc"},
	{Kind: KindPing, SessionID: "session-abc"},
	{Kind: KindList, SessionID: "session-abc"},
	{Kind: KindLogout, SessionID: "session-abc"},
	{Kind: KindSuccess, Content: "login OK", SessionID: "session-abc"},
	{Kind: KindError, Content: "Invalid session"},
	{Kind: KindEvent, Event: EventUserLogin, Name: "alice"},
	{Kind: KindEvent, Event: EventUserLogout, Name: "bob"},
	{Kind: KindEvent, Event: EventMessage, Name: "alice", Content: "hi <everyone> & \"friends\""},
}

func TestCodecs_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{NewGobCodec(), NewXMLCodec()} {
		for _, want := range wireMessages {
			payload, err := codec.Encode(want)
			if err != nil {
				t.Fatalf("%s encode %v: %v", codec.Name(), want.Kind, err)
			}
			got, err := codec.Decode(payload)
			if err != nil {
				t.Fatalf("%s decode %v: %v", codec.Name(), want.Kind, err)
			}
			if got != want {
				t.Fatalf("%s round trip mismatch:\n got %+v\nwant %+v", codec.Name(), got, want)
			}
		}
	}
}

// The two codecs must be interchangeable: the same logical command decodes to
// the same Message regardless of which wire format carried it.
func TestCodecs_SemanticallyEquivalent(t *testing.T) {
	gobCodec := NewGobCodec()
	xmlCodec := NewXMLCodec()

	for _, m := range wireMessages {
		gobPayload, err := gobCodec.Encode(m)
		if err != nil {
			t.Fatalf("gob encode: %v", err)
		}
		xmlPayload, err := xmlCodec.Encode(m)
		if err != nil {
			t.Fatalf("xml encode: %v", err)
		}
		fromGob, err := gobCodec.Decode(gobPayload)
		if err != nil {
			t.Fatalf("gob decode: %v", err)
		}
		fromXML, err := xmlCodec.Decode(xmlPayload)
		if err != nil {
			t.Fatalf("xml decode: %v", err)
		}
		if fromGob != fromXML {
			t.Fatalf("codecs disagree for %v:\n gob %+v\n xml %+v", m.Kind, fromGob, fromXML)
		}
	}
}

func TestXMLCodec_RejectsUnknownRoot(t *testing.T) {
	if _, err := NewXMLCodec().Decode([]byte("<garbage></garbage>")); err == nil {
		t.Fatal("expected an error for an unknown root element")
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("one frame")
	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	got, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("frame mismatch: %q", got)
	}
}

func TestFrame_RejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(MaxFrameSize+1))
	if _, err := readFrame(&buf); err == nil {
		t.Fatal("expected an error for an oversized frame length")
	}
}

func TestFrame_RejectsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0))
	if _, err := readFrame(&buf); err == nil {
		t.Fatal("expected an error for a zero frame length")
	}
}
