package actor

const (
	OBJECT_CREATED EventType = iota
	OBJECT_DESTROYED
	PARENT_CHANGED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

type ObjectCreatedEvent struct {
	Object *GameObject
}

func (e ObjectCreatedEvent) Type() EventType { return OBJECT_CREATED }

// ObjectDestroyedEvent carries the destroyed object; it is no longer Alive.
type ObjectDestroyedEvent struct {
	Object *GameObject
}

func (e ObjectDestroyedEvent) Type() EventType { return OBJECT_DESTROYED }

// ParentChangedEvent is emitted by every accepted SetParent. OldParent and NewParent may be nil.
type ParentChangedEvent struct {
	Object    *GameObject
	OldParent *GameObject
	NewParent *GameObject
}

func (e ParentChangedEvent) Type() EventType { return PARENT_CHANGED }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers structural scene events until Flush. Pose changes are not events:
// they are delivered synchronously through Behavior hooks.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// Pending returns the number of buffered events
func (e *Events) Pending() int {
	return len(e.buffer)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// Flush sends all buffered events, in emission order, and clears the buffer.
// Events emitted by listeners during the flush are delivered by the next Flush.
func (e *Events) Flush() {
	buffer := e.buffer
	e.buffer = make([]Event, 0, cap(buffer))

	for _, event := range buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
}
