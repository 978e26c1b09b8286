package chat

// Kind identifies one wire message. Client-to-server kinds are commands;
// success, error and event only ever travel server-to-client.
type Kind string

const (
	KindLogin   Kind = "login"
	KindSignup  Kind = "signup"
	KindMessage Kind = "message"
	KindPing    Kind = "ping"
	KindLogout  Kind = "logout"
	KindList    Kind = "list"
	KindEvent   Kind = "event"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Event names carried by KindEvent messages.
const (
	EventUserLogin  = "userlogin"
	EventUserLogout = "userlogout"
	EventMessage    = "message"
)

// Message is the wire-level unit both codecs encode and decode. Fields are
// kind-dependent and never reinterpreted across kinds: Name is the user name
// on login/signup and the sender (or joining/leaving user) on events, Content
// is the chat text or the reply text, SessionID ties commands to a live
// session, Event names the event type for KindEvent.
type Message struct {
	Kind       Kind
	Name       string
	Password   string
	Content    string
	SessionID  string
	ClientType string
	Event      string
}

func successMsg(content string) Message {
	return Message{Kind: KindSuccess, Content: content}
}

func successWithSession(content, sessionID string) Message {
	return Message{Kind: KindSuccess, Content: content, SessionID: sessionID}
}

func errorMsg(content string) Message {
	return Message{Kind: KindError, Content: content}
}

func userEvent(event, name string) Message {
	return Message{Kind: KindEvent, Event: event, Name: name}
}

func chatEvent(from, content string) Message {
	return Message{Kind: KindEvent, Event: EventMessage, Name: from, Content: content}
}
