package controller

// Level classifies a user-visible notice.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Area names the part of the interface a notice belongs to.
type Area string

const (
	AreaClients Area = "clients"
	AreaItems   Area = "items"
	AreaInvoice Area = "invoice"
)

// Message is a notice shown to the user.
type Message struct {
	Area  Area
	Level Level
	Text  string
}

// Messages receives notices as actions complete.
type Messages interface {
	Notify(m Message)
}

// MessagesFunc adapts a function to Messages.
type MessagesFunc func(m Message)

func (f MessagesFunc) Notify(m Message) { f(m) }

// Recorder keeps every notice, in order.
type Recorder struct {
	Messages []Message
}

func (r *Recorder) Notify(m Message) { r.Messages = append(r.Messages, m) }

// Last returns the most recent notice, or the zero Message.
func (r *Recorder) Last() Message {
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
