// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"io"

	"golang.org/x/text/encoding"
)

// ObjectMode selects how a Parser materializes JSON objects.
type ObjectMode byte

const (
	// AsMap materializes each object as a map[string]any.
	AsMap ObjectMode = iota

	// AsObject materializes each object as an *Object, which preserves the
	// order in which members were first seen.
	AsObject
)

// Options are settings for a Parser or EventedParser. A nil *Options is ready
// for use and provides default values.
type Options struct {
	// Encoding is the encoding of the input text. If nil, the input must be
	// UTF-8. All input to a single parser must use the same encoding.
	Encoding encoding.Encoding

	// Objects selects the representation of objects materialized by a
	// Parser. It is ignored by an EventedParser.
	Objects ObjectMode
}

func (o *Options) encoding() encoding.Encoding {
	if o == nil {
		return nil
	}
	return o.Encoding
}

func (o *Options) objects() ObjectMode {
	if o == nil {
		return AsMap
	}
	return o.Objects
}

// An engine connects a Lexer to a TokenParser, and resets both whenever
// either reports an error, so that no partial state survives an error.
type engine struct {
	lex *Lexer
	tp  *TokenParser

	// clear, if set, resets the state of the consumer of events.
	clear func()
}

func newEngine(opts *Options, sink EventSink, clear func()) *engine {
	tp := NewTokenParser(sink)
	return &engine{lex: NewLexer(opts.encoding(), tp.FeedToken), tp: tp, clear: clear}
}

// Reset discards all partial input and parse state.
func (e *engine) Reset() {
	e.lex.Reset()
	e.tp.Reset()
	if e.clear != nil {
		e.clear()
	}
}

// Feed delivers a chunk of input to the lexer, whose tokens flow to the token
// parser. In case of error, the engine is reset before the error is returned.
func (e *engine) Feed(data []byte) error {
	if err := e.lex.Feed(data); err != nil {
		e.Reset()
		return err
	}
	return nil
}

// Finalize signals the end of input to the lexer and then the token parser.
// In case of error, the engine is reset before the error is returned.
func (e *engine) Finalize() error {
	err := e.lex.Finalize()
	if err == nil {
		err = e.tp.Finalize()
	}
	if err != nil {
		e.Reset()
	}
	return err
}

// readChunkSize is the size of the buffer used to read input from an
// io.Reader.
const readChunkSize = 8192

// readChunks reads r to EOF, passing each chunk of input to feed. It reports
// the total number of bytes read, and stops at the first error.
func readChunks(r io.Reader, feed func([]byte) error) (int64, error) {
	buf := make([]byte, readChunkSize)
	var total int64
	for {
		nr, err := r.Read(buf)
		total += int64(nr)
		if nr > 0 {
			if ferr := feed(buf[:nr]); ferr != nil {
				return total, ferr
			}
		}
		if err == io.EOF {
			return total, nil
		} else if err != nil {
			return total, err
		}
	}
}
