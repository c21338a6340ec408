package game

// MessageType identifies the payload published on the EventBus
type MessageType int

const (
	FPSMessageType MessageType = iota
	ResizeMessageType
	StateMessageType
)

func (t MessageType) String() string {
	switch t {
	case FPSMessageType:
		return "fps"
	case ResizeMessageType:
		return "resize"
	case StateMessageType:
		return "state"
	}
	return "unknown"
}

type Message interface {
	Type() MessageType
}

// MessageFPS is published once per fps window with the rendered frames per second
type MessageFPS struct {
	FPS float64
}

func (e MessageFPS) Type() MessageType { return FPSMessageType }

// MessageResize carries the new surface size in pixels
type MessageResize struct {
	Width, Height int
}

func (e MessageResize) Type() MessageType { return ResizeMessageType }

// MessageState is published on every engine state change
type MessageState struct {
	From, To State
}

func (e MessageState) Type() MessageType { return StateMessageType }
