package chat

import (
	"encoding/xml"
	"fmt"
)

// xmlFrame mirrors the document shapes of the XML wire format. The root
// element name carries the message class (command, success, error, event) and
// the name attribute carries the command kind or event type.
type xmlFrame struct {
	XMLName  xml.Name
	Kind     string `xml:"name,attr,omitempty"`
	Name     string `xml:"name,omitempty"`
	Password string `xml:"password,omitempty"`
	Type     string `xml:"type,omitempty"`
	Session  string `xml:"session,omitempty"`
	Message  string `xml:"message,omitempty"`
}

type xmlCodec struct{}

// NewXMLCodec returns the XML document codec.
func NewXMLCodec() Codec { return xmlCodec{} }

func (xmlCodec) Name() string { return "xml" }

func (xmlCodec) Encode(m Message) ([]byte, error) {
	frame := xmlFrame{
		Name:     m.Name,
		Password: m.Password,
		Type:     m.ClientType,
		Session:  m.SessionID,
		Message:  m.Content,
	}
	switch m.Kind {
	case KindSuccess:
		frame.XMLName = xml.Name{Local: "success"}
	case KindError:
		frame.XMLName = xml.Name{Local: "error"}
	case KindEvent:
		frame.XMLName = xml.Name{Local: "event"}
		frame.Kind = m.Event
	default:
		frame.XMLName = xml.Name{Local: "command"}
		frame.Kind = string(m.Kind)
	}
	data, err := xml.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("xml encode: %w", err)
	}
	return data, nil
}

func (xmlCodec) Decode(payload []byte) (Message, error) {
	var frame xmlFrame
	if err := xml.Unmarshal(payload, &frame); err != nil {
		return Message{}, fmt.Errorf("xml decode: %w", err)
	}

	m := Message{
		Name:       frame.Name,
		Password:   frame.Password,
		ClientType: frame.Type,
		SessionID:  frame.Session,
		Content:    frame.Message,
	}
	switch frame.XMLName.Local {
	case "success":
		m.Kind = KindSuccess
	case "error":
		m.Kind = KindError
	case "event":
		m.Kind = KindEvent
		m.Event = frame.Kind
	case "command":
		m.Kind = Kind(frame.Kind)
	default:
		return Message{}, fmt.Errorf("xml decode: unknown root element %q", frame.XMLName.Local)
	}
	return m, nil
}
