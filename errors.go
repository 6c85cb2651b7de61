// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the kind of a lexical error. A *LexError
// unwraps to exactly one of these.
var (
	ErrUnexpectedCharacter    = errors.New("unexpected character")
	ErrInvalidEscape          = errors.New("invalid escape sequence")
	ErrDigitAfterSign         = errors.New("expected digit after negative sign")
	ErrDigitAfterDecimalPoint = errors.New("expected digit after decimal point")
	ErrExponentDigit          = errors.New("expected digit or +/- in exponent")
	ErrMalformedKeyword       = errors.New("malformed keyword")
	ErrMultipleHighSurrogates = errors.New("multiple high surrogates for unicode surrogate pair")
	ErrMissingHighSurrogate   = errors.New("missing high surrogate for unicode surrogate pair")
	ErrMissingLowSurrogate    = errors.New("missing low surrogate for unicode surrogate pair")
	ErrUnterminatedLiteral    = errors.New("character stream ended while scanning literal value")
	ErrInvalidEncoding        = errors.New("invalid character encoding")
)

// Sentinel errors identifying the kind of a structural error. A *ParseError
// unwraps to exactly one of these.
var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEnd   = errors.New("token stream ended unexpectedly")
)

// LexError is the concrete type of errors reported by the Lexer for a
// malformed character stream.
type LexError struct {
	Location LineCol
	Message  string

	err error
}

// Error satisfies the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location, e.Message)
}

// Unwrap supports error wrapping.
func (e *LexError) Unwrap() error { return e.err }

// ParseError is the concrete type of errors reported by the TokenParser for a
// malformed token stream.
type ParseError struct {
	Location LineCol
	Message  string

	// Token is the type of the offending token. It is Invalid for an error
	// reported at the end of the token stream.
	Token TokenType

	// State is the state of the innermost open container when the error
	// occurred, or NoState if no container was open.
	State ParserState

	err error
}

// Error satisfies the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location, e.Message)
}

// Unwrap supports error wrapping.
func (e *ParseError) Unwrap() error { return e.err }
