// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"bytes"
	"io"

	"github.com/creachadair/mds/stack"
	"github.com/tailscale/hujson"
)

// A Parser is an incremental JSON parser that materializes complete values.
// Input is delivered in chunks of any size by calls to Feed (or Write), and
// each top-level value is added to an internal sequence as soon as it is
// complete. Call Values to retrieve the completed values.
//
// Arrays materialize as []any, objects as map[string]any or *Object (see
// ObjectMode), strings as string, numbers as int64 or float64, Booleans as
// bool, and null as nil.
//
// If Feed or Finalize reports an error, the parser is reset before it
// returns, discarding all partial input and any values not yet retrieved.
// A Parser is not safe for concurrent use.
type Parser struct {
	eng     *engine
	objects ObjectMode
	stk     *stack.Stack[*frame] // open containers, innermost on top
	values  []any                // completed top-level values
}

// A frame is the materialization context of an open container.
type frame struct {
	key    string // pending member key, if hasKey
	hasKey bool
	array  []any // elements, if the container is an array
	object any   // map[string]any or *Object, if the container is an object
}

// value returns the container under construction in f.
func (f *frame) value() any {
	if f.object != nil {
		return f.object
	}
	return f.array
}

// NewParser constructs a new Parser with the given options.
// A nil *Options provides default settings.
func NewParser(opts *Options) *Parser {
	p := &Parser{objects: opts.objects(), stk: stack.New[*frame]()}
	p.eng = newEngine(opts, p.handle, p.clear)
	return p
}

// Parse parses data as a complete input consisting of zero or more JSON
// values, and returns those values. Any state left from previous input is
// discarded first.
func Parse(data []byte, opts *Options) ([]any, error) { return NewParser(opts).Parse(data) }

// ObjectMode reports how p materializes objects.
func (p *Parser) ObjectMode() ObjectMode { return p.objects }

// Parse resets p, parses data as a complete input, and returns the values it
// contains.
func (p *Parser) Parse(data []byte) ([]any, error) {
	p.Reset()
	if err := p.Feed(data); err != nil {
		return nil, err
	} else if err := p.Finalize(); err != nil {
		return nil, err
	}
	return p.Values(), nil
}

// ParseHuJSON is as Parse, but first converts data from HuJSON (JSON with
// comments and trailing commas) to standard JSON. The data must be UTF-8 and
// contain a single value.
func (p *Parser) ParseHuJSON(data []byte) ([]any, error) {
	std, err := Standardize(data)
	if err != nil {
		return nil, err
	}
	return p.Parse(std)
}

// Standardize returns a copy of data in which HuJSON comments and trailing
// commas have been replaced by whitespace. The input is not modified.
func Standardize(data []byte) ([]byte, error) {
	return hujson.Standardize(bytes.Clone(data))
}

// Feed delivers a chunk of input to the parser.
func (p *Parser) Feed(data []byte) error { return p.eng.Feed(data) }

// Write implements io.Writer by feeding data to the parser.
func (p *Parser) Write(data []byte) (int, error) {
	if err := p.Feed(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadFrom implements io.ReaderFrom by feeding the contents of r to the
// parser until r reports io.EOF. It does not call Finalize.
func (p *Parser) ReadFrom(r io.Reader) (int64, error) { return readChunks(r, p.Feed) }

// Finalize signals the end of the input. It reports an error if the input
// ended in the middle of a value.
func (p *Parser) Finalize() error { return p.eng.Finalize() }

// Reset discards all partial input, open containers, and completed values.
func (p *Parser) Reset() { p.eng.Reset() }

// Values returns the top-level values completed so far and removes them from
// the parser. It is safe to call at any time, including mid-stream.
func (p *Parser) Values() []any {
	vs := p.values
	p.values = nil
	return vs
}

func (p *Parser) clear() {
	p.stk.Clear()
	p.values = nil
}

// handle is the event sink for the token parser.
func (p *Parser) handle(ev Event) error {
	switch ev.Type {
	case EventArrayOpen:
		p.stk.Add(&frame{array: []any{}})
	case EventObjectOpen:
		if p.objects == AsObject {
			p.stk.Add(&frame{object: new(Object)})
		} else {
			p.stk.Add(&frame{object: make(map[string]any)})
		}
	case EventObjectKey:
		if f, ok := p.stk.Peek(0); ok {
			f.key, f.hasKey = ev.Key, true
		}
	case EventValue:
		p.addValue(ev.Value)
	case EventArrayClose, EventObjectClose:
		if f, ok := p.stk.Pop(); ok {
			p.addValue(f.value())
		}
	}
	return nil
}

// addValue attaches a completed value to the innermost open container, or to
// the output if no container is open.
func (p *Parser) addValue(v any) {
	f, ok := p.stk.Peek(0)
	if !ok {
		p.values = append(p.values, v)
		return
	}
	if !f.hasKey {
		f.array = append(f.array, v)
		return
	}
	switch obj := f.object.(type) {
	case map[string]any:
		obj[f.key] = v
	case *Object:
		obj.Set(f.key, v)
	}
	f.key, f.hasKey = "", false
}
