// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import "fmt"

// EventType identifies the kind of a structural event.
type EventType byte

// Constants defining the valid EventType values. The TokenParser emits only
// the array, object, key, and value events; the document and error events
// are synthesized by an EventedParser.
const (
	EventDocumentOpen  EventType = iota // start of a top-level value
	EventDocumentClose                  // end of a top-level value
	EventArrayOpen                      // [
	EventArrayClose                     // ]
	EventObjectOpen                     // {
	EventObjectClose                    // }
	EventObjectKey                      // "key":
	EventValue                          // string, number, true, false, null
	EventError                          // syntax or listener error

	numEventTypes
)

var eventStr = [...]string{
	EventDocumentOpen:  "document-open",
	EventDocumentClose: "document-close",
	EventArrayOpen:     "array-open",
	EventArrayClose:    "array-close",
	EventObjectOpen:    "object-open",
	EventObjectClose:   "object-close",
	EventObjectKey:     "object-key",
	EventValue:         "value",
	EventError:         "error",
}

func (e EventType) String() string {
	if e >= numEventTypes {
		return "unknown"
	}
	return eventStr[e]
}

// An Event is a single structural event.
type Event struct {
	Type EventType

	Key   string // for EventObjectKey
	Value any    // for EventValue: string, int64, float64, bool, or nil
	Err   error  // for EventError
}

// String renders the event for diagnostics, for example:
//
//	array-open
//	object-key("k")
//	value(2)
func (e Event) String() string {
	switch e.Type {
	case EventObjectKey:
		return fmt.Sprintf("%s(%s)", e.Type, Quote(e.Key))
	case EventValue:
		return fmt.Sprintf("%s(%s)", e.Type, formatScalar(e.Value))
	case EventError:
		return fmt.Sprintf("%s(%v)", e.Type, e.Err)
	default:
		return e.Type.String()
	}
}

// An EventSink receives structural events. If it reports an error, parsing
// stops and the error is returned to the caller.
type EventSink func(Event) error
