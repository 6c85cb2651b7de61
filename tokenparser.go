// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import "fmt"

// ParserState is the parse state of an open container (array or object).
type ParserState byte

// Constants defining the valid ParserState values.
const (
	NoState              ParserState = iota // not inside any container
	ArrayStart                              // after "["
	ArrayValue                              // expecting an array element
	ArrayValueSeparator                     // expecting "," or "]"
	ObjectStart                             // after "{"
	ObjectKey                               // expecting a member key
	ObjectKeySeparator                      // expecting ":"
	ObjectValue                             // expecting a member value
	ObjectValueSeparator                    // expecting "," or "}"

	numParserStates
)

var parserStateStr = [...]string{
	NoState:              "NONE",
	ArrayStart:           "ARRAY_START",
	ArrayValue:           "ARRAY_VALUE",
	ArrayValueSeparator:  "ARRAY_VALUE_SEPARATOR",
	ObjectStart:          "OBJECT_START",
	ObjectKey:            "OBJECT_KEY",
	ObjectKeySeparator:   "OBJECT_KEY_SEPARATOR",
	ObjectValue:          "OBJECT_VALUE",
	ObjectValueSeparator: "OBJECT_VALUE_SEPARATOR",
}

func (s ParserState) String() string {
	if s >= numParserStates {
		return "INVALID"
	}
	return parserStateStr[s]
}

// A TokenParser consumes a stream of tokens and reports the structure of the
// values they describe as events delivered to a sink. Tokens may be delivered
// one at a time or in batches, and the parser keeps a stack of the states of
// the containers that are currently open.
//
// The stream may contain any number of concatenated top-level values.
// After a TokenParser reports an error, its state is unspecified until Reset
// is called.
type TokenParser struct {
	sink EventSink
	stk  []ParserState
	last LineCol // location of the most recent token
}

// NewTokenParser constructs a TokenParser that delivers events to sink.
func NewTokenParser(sink EventSink) *TokenParser {
	return &TokenParser{sink: sink, last: LineCol{Line: 1}}
}

// Reset discards all open containers and returns p to its initial state.
func (p *TokenParser) Reset() {
	p.stk = p.stk[:0]
	p.last = LineCol{Line: 1}
}

// Depth reports the number of containers currently open.
func (p *TokenParser) Depth() int { return len(p.stk) }

// State reports the state of the innermost open container, or NoState if no
// container is open.
func (p *TokenParser) State() ParserState {
	if len(p.stk) == 0 {
		return NoState
	}
	return p.stk[len(p.stk)-1]
}

// Feed delivers each of the given tokens to p in order, stopping at the first
// error.
func (p *TokenParser) Feed(tokens ...Token) error {
	for _, tok := range tokens {
		if err := p.FeedToken(tok); err != nil {
			return err
		}
	}
	return nil
}

// FeedToken advances the parser by exactly one token. It has the type of a
// TokenSink, so it can consume the output of a Lexer directly.
func (p *TokenParser) FeedToken(tok Token) error {
	p.last = tok.Loc
	switch p.State() {
	case ArrayStart:
		return p.doArrayStart(tok)
	case ArrayValueSeparator:
		return p.doArrayValueSeparator(tok)
	case ObjectStart:
		return p.doObjectStart(tok)
	case ObjectKey:
		return p.doObjectKey(tok)
	case ObjectKeySeparator:
		return p.doObjectKeySeparator(tok)
	case ObjectValueSeparator:
		return p.doObjectValueSeparator(tok)
	}
	// NoState, ArrayValue, ObjectValue
	return p.doValue(tok)
}

// Finalize reports an error if any container is still open.
func (p *TokenParser) Finalize() error {
	if len(p.stk) != 0 {
		return &ParseError{
			Location: p.last,
			Message:  "token stream ended unexpectedly",
			Token:    Invalid,
			State:    p.State(),
			err:      ErrUnexpectedEnd,
		}
	}
	return nil
}

// doValue consumes the first token of a value.
func (p *TokenParser) doValue(tok Token) error {
	switch tok.Type {
	case BraceOpen:
		p.stk = append(p.stk, ObjectStart)
		return p.sink(Event{Type: EventObjectOpen})
	case BracketOpen:
		p.stk = append(p.stk, ArrayStart)
		return p.sink(Event{Type: EventArrayOpen})
	case StringLiteral, BooleanLiteral, NullLiteral, NumberLiteral:
		p.endValue()
		return p.sink(Event{Type: EventValue, Value: tok.Value})
	default:
		return p.unexpected(tok)
	}
}

func (p *TokenParser) doObjectStart(tok Token) error {
	if tok.Type == BraceClose {
		return p.close(EventObjectClose)
	}
	p.setState(ObjectKey)
	return p.doObjectKey(tok)
}

func (p *TokenParser) doObjectKey(tok Token) error {
	if tok.Type != StringLiteral {
		return p.unexpected(tok)
	}
	key, _ := tok.Value.(string)
	p.setState(ObjectKeySeparator)
	return p.sink(Event{Type: EventObjectKey, Key: key})
}

func (p *TokenParser) doObjectKeySeparator(tok Token) error {
	if tok.Type != Colon {
		return p.unexpected(tok)
	}
	p.setState(ObjectValue)
	return nil
}

func (p *TokenParser) doObjectValueSeparator(tok Token) error {
	switch tok.Type {
	case BraceClose:
		return p.close(EventObjectClose)
	case Comma:
		p.setState(ObjectKey)
		return nil
	default:
		return p.unexpected(tok)
	}
}

func (p *TokenParser) doArrayStart(tok Token) error {
	if tok.Type == BracketClose {
		return p.close(EventArrayClose)
	}
	p.setState(ArrayValue)
	return p.doValue(tok)
}

func (p *TokenParser) doArrayValueSeparator(tok Token) error {
	switch tok.Type {
	case BracketClose:
		return p.close(EventArrayClose)
	case Comma:
		p.setState(ArrayValue)
		return nil
	default:
		return p.unexpected(tok)
	}
}

// close pops the innermost container, which is itself a completed value of
// its enclosing container, and reports ev.
func (p *TokenParser) close(ev EventType) error {
	p.stk = p.stk[:len(p.stk)-1]
	p.endValue()
	return p.sink(Event{Type: ev})
}

// endValue records that a value of the innermost container is complete.
func (p *TokenParser) endValue() {
	switch p.State() {
	case ArrayValue:
		p.setState(ArrayValueSeparator)
	case ObjectValue:
		p.setState(ObjectValueSeparator)
	}
}

// setState replaces the state of the innermost container.
// Precondition: len(p.stk) > 0.
func (p *TokenParser) setState(s ParserState) { p.stk[len(p.stk)-1] = s }

func (p *TokenParser) unexpected(tok Token) error {
	state := p.State()
	msg := fmt.Sprintf("unexpected token %s", tok.Type)
	if state != NoState {
		msg += " in state " + state.String()
	}
	return &ParseError{
		Location: tok.Loc,
		Message:  msg,
		Token:    tok.Type,
		State:    state,
		err:      ErrUnexpectedToken,
	}
}
