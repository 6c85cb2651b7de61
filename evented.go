// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"io"

	"github.com/creachadair/jfeed/emitter"
)

// A Listener receives events from an EventedParser. If a listener reports an
// error, parsing stops, the parser is reset, and the error is delivered to the
// listeners for EventError.
type Listener func(Event) error

// An EventedParser is an incremental JSON parser that reports the structure
// of its input as events delivered to registered listeners. In addition to
// the events of a TokenParser, it reports EventDocumentOpen before the first
// event of each top-level value and EventDocumentClose after its last event,
// so that consumers can find the boundaries of concatenated values.
//
// An EventedParser does not return syntax errors. When an error occurs, the
// parser is reset and the error is delivered as an EventError event. The
// methods that accept input report an error only if a listener for
// EventError fails.
//
// Listeners are called synchronously, and must not call Feed, Finalize,
// Parse, or Reset on the parser that is calling them. An EventedParser is not
// safe for concurrent use.
type EventedParser struct {
	eng   *engine
	em    emitter.Emitter[EventType, Event]
	depth int // number of containers open
}

// NewEventedParser constructs a new EventedParser with the given options.
// A nil *Options provides default settings.
func NewEventedParser(opts *Options) *EventedParser {
	p := new(EventedParser)
	p.eng = newEngine(opts, p.handle, func() { p.depth = 0 })
	return p
}

// On registers fn to be called for each event of type t, and returns a handle
// that can be used to remove it.
func (p *EventedParser) On(t EventType, fn Listener) emitter.Handle { return p.em.On(t, fn) }

// Once registers fn to be called for only the next event of type t.
func (p *EventedParser) Once(t EventType, fn Listener) emitter.Handle { return p.em.Once(t, fn) }

// RemoveListener removes the listener identified by h, and reports whether it
// was registered.
func (p *EventedParser) RemoveListener(h emitter.Handle) bool { return p.em.Off(h) }

// RemoveAllListeners removes all the listeners for the given event types, or
// for all event types if none are given.
func (p *EventedParser) RemoveAllListeners(ts ...EventType) {
	if len(ts) == 0 {
		p.em.ClearAll()
	}
	for _, t := range ts {
		p.em.Clear(t)
	}
}

// ListenerCount reports the number of listeners registered for t.
func (p *EventedParser) ListenerCount(t EventType) int { return p.em.Len(t) }

// Parse resets p and parses data as a complete input.
func (p *EventedParser) Parse(data []byte) error {
	p.Reset()
	err := p.eng.Feed(data)
	if err == nil {
		err = p.eng.Finalize()
	}
	if err != nil {
		return p.fail(err)
	}
	return nil
}

// Feed delivers a chunk of input to the parser.
func (p *EventedParser) Feed(data []byte) error {
	if err := p.eng.Feed(data); err != nil {
		return p.fail(err)
	}
	return nil
}

// Write implements io.Writer by feeding data to the parser.
func (p *EventedParser) Write(data []byte) (int, error) {
	if err := p.Feed(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadFrom implements io.ReaderFrom by feeding the contents of r to the
// parser until r reports io.EOF. It does not call Finalize.
func (p *EventedParser) ReadFrom(r io.Reader) (int64, error) { return readChunks(r, p.Feed) }

// Finalize signals the end of the input.
func (p *EventedParser) Finalize() error {
	if err := p.eng.Finalize(); err != nil {
		return p.fail(err)
	}
	return nil
}

// Reset discards all partial input and parse state. Listeners are retained.
func (p *EventedParser) Reset() { p.eng.Reset() }

// fail reports err to the error listeners. The engine has already been reset.
func (p *EventedParser) fail(err error) error {
	return p.emit(Event{Type: EventError, Err: err})
}

func (p *EventedParser) emit(ev Event) error { return p.em.Emit(ev.Type, ev) }

// handle is the event sink for the token parser.
func (p *EventedParser) handle(ev Event) error {
	switch ev.Type {
	case EventArrayOpen, EventObjectOpen:
		if p.depth == 0 {
			if err := p.emit(Event{Type: EventDocumentOpen}); err != nil {
				return err
			}
		}
		p.depth++
		return p.emit(ev)

	case EventArrayClose, EventObjectClose:
		if err := p.emit(ev); err != nil {
			return err
		}
		if p.depth--; p.depth == 0 {
			return p.emit(Event{Type: EventDocumentClose})
		}
		return nil

	case EventValue:
		if p.depth != 0 {
			return p.emit(ev)
		}
		if err := p.emit(Event{Type: EventDocumentOpen}); err != nil {
			return err
		} else if err := p.emit(ev); err != nil {
			return err
		}
		return p.emit(Event{Type: EventDocumentClose})

	default:
		return p.emit(ev)
	}
}
