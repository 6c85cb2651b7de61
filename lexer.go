// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"go4.org/mem"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// LexerState is the state of the character-level state machine of a Lexer.
// It is the only lexer state that survives between calls to Feed, apart from
// the partial token and undecoded input buffers.
type LexerState byte

// Constants defining the valid LexerState values.
const (
	Begin                    LexerState = iota // between tokens
	StringValue                                // inside a string literal
	StringValueEscaped                         // after "\" in a string literal
	StringValueUnicode                         // inside a "\uXXXX" escape
	NumberValue                                // integer digits after a nonzero digit
	NumberValueNegative                        // after a leading "-"
	NumberValueLeadingZero                     // after a leading "0" or "-0"
	NumberValueDecimal                         // after a decimal point
	NumberValueExponentStart                   // after "e" or "E"
	NumberValueExponent                        // exponent sign or digits
	TrueValue                                  // partial "true"
	FalseValue                                 // partial "false"
	NullValue                                  // partial "null"

	numLexerStates
)

var lexerStateStr = [...]string{
	Begin:                    "BEGIN",
	StringValue:              "STRING_VALUE",
	StringValueEscaped:       "STRING_VALUE_ESCAPED",
	StringValueUnicode:       "STRING_VALUE_UNICODE",
	NumberValue:              "NUMBER_VALUE",
	NumberValueNegative:      "NUMBER_VALUE_NEGATIVE",
	NumberValueLeadingZero:   "NUMBER_VALUE_LEADING_ZERO",
	NumberValueDecimal:       "NUMBER_VALUE_DECIMAL",
	NumberValueExponentStart: "NUMBER_VALUE_EXPONENT_START",
	NumberValueExponent:      "NUMBER_VALUE_EXPONENT",
	TrueValue:                "TRUE_VALUE",
	FalseValue:               "FALSE_VALUE",
	NullValue:                "NULL_VALUE",
}

func (s LexerState) String() string {
	if s >= numLexerStates {
		return "INVALID"
	}
	return lexerStateStr[s]
}

// A TokenSink receives tokens from a Lexer. If it reports an error, lexing
// stops and the error is returned to the caller of Feed or Finalize.
type TokenSink func(Token) error

// A Lexer is an incremental lexical scanner for JSON. Input is delivered in
// arbitrary chunks by calls to Feed, and each token is passed to the sink as
// soon as enough input has been seen to complete it.
//
// After a Lexer reports an error, its state is unspecified until Reset is
// called.
type Lexer struct {
	sink TokenSink
	dec  transform.Transformer // nil for UTF-8 input

	state LexerState
	buf   []byte // text of the token in progress
	code  rune   // accumulated value of a \u escape
	nhex  int    // number of hex digits in code, 0-4
	high  rune   // pending high surrogate, or 0
	input []byte // undecoded input held over from the previous Feed
	text  []byte // scratch space for transcoded input

	loc   Location // location of the next input character
	start LineCol  // location where the current token began
}

// NewLexer constructs a Lexer that delivers tokens to sink. The input is
// decoded using enc; if enc == nil the input must be UTF-8. Malformed input
// is an error for UTF-8, but most decoders replace it with U+FFFD.
func NewLexer(enc encoding.Encoding, sink TokenSink) *Lexer {
	l := &Lexer{sink: sink}
	if enc != nil {
		l.dec = enc.NewDecoder()
	}
	l.Reset()
	return l
}

// Reset discards any partial token and undecoded input, and returns l to its
// initial state.
func (l *Lexer) Reset() {
	l.state = Begin
	l.buf = l.buf[:0]
	l.code, l.nhex, l.high = 0, 0, 0
	l.input = l.input[:0]
	l.loc = Location{LineCol: LineCol{Line: 1}}
	l.start = l.loc.LineCol
	if l.dec != nil {
		l.dec.Reset()
	}
}

// State reports the current state of the lexer.
func (l *Lexer) State() LexerState { return l.state }

// Location reports the location of the next character to be read.
func (l *Lexer) Location() Location { return l.loc }

// Feed consumes a chunk of input, delivering any tokens it completes to the
// sink. Bytes at the end of data that do not yet form a complete character
// are retained and prefixed to the input of the next call.
func (l *Lexer) Feed(data []byte) error {
	src := data
	if len(l.input) != 0 {
		l.input = append(l.input, data...)
		src = l.input
	}

	if l.dec != nil {
		text, nr, err := l.transcode(src, false)
		if err != nil {
			return l.fail(ErrInvalidEncoding, "%v", err)
		}
		l.hold(src[nr:])
		_, err = l.scan(text)
		return err
	}

	nr, err := l.scan(src)
	if err != nil {
		return err
	}
	l.hold(src[nr:])
	return nil
}

// Finalize signals the end of the input. If a number literal is in progress
// and is complete, it is delivered to the sink. Any other partial token is
// reported as an error.
func (l *Lexer) Finalize() error {
	if l.dec != nil && len(l.input) != 0 {
		text, _, err := l.transcode(l.input, true)
		if err != nil {
			return l.fail(ErrInvalidEncoding, "%v", err)
		}
		l.input = l.input[:0]
		if _, err := l.scan(text); err != nil {
			return err
		}
	}
	if len(l.input) != 0 {
		return l.fail(ErrInvalidEncoding, "input ended with an incomplete character")
	}

	switch l.state {
	case Begin:
		return nil
	case NumberValue, NumberValueLeadingZero:
		return l.emitNumber(false)
	case NumberValueDecimal:
		if l.lastIs('.') {
			return l.fail(ErrDigitAfterDecimalPoint, "expected digit after decimal point")
		}
		return l.emitNumber(true)
	case NumberValueExponent:
		if l.lastIs('+') || l.lastIs('-') {
			return l.fail(ErrExponentDigit, "expected digit in exponent")
		}
		return l.emitNumber(true)
	default:
		return l.fail(ErrUnterminatedLiteral, "character stream ended while scanning literal value")
	}
}

// hold retains rest as the prefix of the next input chunk.
func (l *Lexer) hold(rest []byte) { l.input = append(l.input[:0], rest...) }

// transcode converts src to UTF-8 using the configured decoder. It returns the
// decoded text and the number of bytes of src consumed. Unless atEOF is true,
// a trailing partial character is not consumed.
func (l *Lexer) transcode(src []byte, atEOF bool) ([]byte, int, error) {
	l.text = slices.Grow(l.text[:0], 2*len(src)+utf8.UTFMax)
	var nr int
	for {
		nDst, nSrc, err := l.dec.Transform(l.text[len(l.text):cap(l.text)], src[nr:], atEOF)
		l.text = l.text[:len(l.text)+nDst]
		nr += nSrc
		switch err {
		case nil, transform.ErrShortSrc:
			return l.text, nr, nil
		case transform.ErrShortDst:
			l.text = slices.Grow(l.text, cap(l.text)+utf8.UTFMax)
		default:
			return nil, nr, err
		}
	}
}

// scan lexes the complete UTF-8 characters of src and reports how many bytes
// it consumed. Scanning stops early at an incomplete trailing character.
func (l *Lexer) scan(src []byte) (int, error) {
	var pos int
	for pos < len(src) {
		ch, nb := rune(src[pos]), 1
		if ch >= utf8.RuneSelf {
			if !utf8.FullRune(src[pos:]) {
				break // wait for more input
			}
			ch, nb = utf8.DecodeRune(src[pos:])
			if ch == utf8.RuneError && nb == 1 {
				return pos, l.fail(ErrInvalidEncoding, "invalid UTF-8 byte %#02x", src[pos])
			}
		}
		if err := stateFunc[l.state](l, ch); err != nil {
			return pos, err
		}
		pos += nb

		l.loc.Offset++
		if ch == '\n' {
			l.loc.Line++
			l.loc.Column = 0
		} else {
			l.loc.Column++
		}
	}
	return pos, nil
}

// stateFunc maps each lexer state to the handler for the next character.
var stateFunc [numLexerStates]func(*Lexer, rune) error

func init() {
	stateFunc = [...]func(*Lexer, rune) error{
		Begin:                    (*Lexer).doBegin,
		StringValue:              (*Lexer).doString,
		StringValueEscaped:       (*Lexer).doStringEscaped,
		StringValueUnicode:       (*Lexer).doStringUnicode,
		NumberValue:              (*Lexer).doNumber,
		NumberValueNegative:      (*Lexer).doNumberNegative,
		NumberValueLeadingZero:   (*Lexer).doNumberLeadingZero,
		NumberValueDecimal:       (*Lexer).doNumberDecimal,
		NumberValueExponentStart: (*Lexer).doNumberExponentStart,
		NumberValueExponent:      (*Lexer).doNumberExponent,
		TrueValue:                func(l *Lexer, ch rune) error { return l.doKeyword(ch, "true", true) },
		FalseValue:               func(l *Lexer, ch rune) error { return l.doKeyword(ch, "false", false) },
		NullValue:                func(l *Lexer, ch rune) error { return l.doKeyword(ch, "null", nil) },
	}
}

func (l *Lexer) doBegin(ch rune) error {
	switch {
	case ch == '"':
		l.begin(StringValue)
	case ch == '0':
		l.begin(NumberValueLeadingZero)
		l.buf = append(l.buf, '0')
	case ch == '-':
		l.begin(NumberValueNegative)
		l.buf = append(l.buf, '-')
	case isDigit(ch):
		l.begin(NumberValue)
		l.buf = append(l.buf, byte(ch))
	case ch == 't':
		l.begin(TrueValue)
		l.buf = append(l.buf, 't')
	case ch == 'f':
		l.begin(FalseValue)
		l.buf = append(l.buf, 'f')
	case ch == 'n':
		l.begin(NullValue)
		l.buf = append(l.buf, 'n')
	case isSpace(ch):
		// discard
	default:
		tok, ok := SpecialToken(ch)
		if !ok {
			return l.fail(ErrUnexpectedCharacter, "unexpected character %q", ch)
		}
		tok.Loc = l.loc.LineCol
		return l.sink(tok)
	}
	return nil
}

func (l *Lexer) doString(ch rune) error {
	switch {
	case ch == '\\':
		l.state = StringValueEscaped
	case l.high != 0:
		return l.fail(ErrMissingLowSurrogate, "missing low surrogate for unicode surrogate pair")
	case ch == '"':
		return l.emit(StringLiteral, string(l.buf))
	default:
		l.buf = utf8.AppendRune(l.buf, ch)
	}
	return nil
}

func (l *Lexer) doStringEscaped(ch rune) error {
	if ch == 'u' {
		l.code, l.nhex = 0, 0
		l.state = StringValueUnicode
		return nil
	} else if l.high != 0 {
		return l.fail(ErrMissingLowSurrogate, "missing low surrogate for unicode surrogate pair")
	}
	switch ch {
	case '"', '\\', '/':
		l.buf = append(l.buf, byte(ch))
	case 'b':
		l.buf = append(l.buf, '\b')
	case 'f':
		l.buf = append(l.buf, '\f')
	case 'n':
		l.buf = append(l.buf, '\n')
	case 'r':
		l.buf = append(l.buf, '\r')
	case 't':
		l.buf = append(l.buf, '\t')
	default:
		return l.fail(ErrInvalidEscape, "invalid escape sequence %q", `\`+string(ch))
	}
	l.state = StringValue
	return nil
}

func (l *Lexer) doStringUnicode(ch rune) error {
	v, ok := hexValue(ch)
	if !ok {
		return l.fail(ErrInvalidEscape, "invalid hex digit %q in unicode escape", ch)
	}
	l.code = l.code<<4 | v
	if l.nhex++; l.nhex < 4 {
		return nil
	}

	cp := l.code
	l.code, l.nhex = 0, 0
	switch {
	case isHighSurrogate(cp):
		if l.high != 0 {
			return l.fail(ErrMultipleHighSurrogates, "multiple high surrogates for unicode surrogate pair")
		}
		l.high = cp // wait for the low half

	case isLowSurrogate(cp):
		if l.high == 0 {
			return l.fail(ErrMissingHighSurrogate, "missing high surrogate for unicode surrogate pair")
		}
		l.buf = utf8.AppendRune(l.buf, 0x10000+(l.high-0xd800)*0x400+(cp-0xdc00))
		l.high = 0

	default:
		if l.high != 0 {
			return l.fail(ErrMissingLowSurrogate, "missing low surrogate for unicode surrogate pair")
		}
		l.buf = utf8.AppendRune(l.buf, cp)
	}
	l.state = StringValue
	return nil
}

func (l *Lexer) doNumber(ch rune) error {
	switch {
	case isDigit(ch):
		l.buf = append(l.buf, byte(ch))
	case ch == '.':
		l.buf = append(l.buf, '.')
		l.state = NumberValueDecimal
	case ch == 'e' || ch == 'E':
		l.buf = append(l.buf, 'e')
		l.state = NumberValueExponentStart
	default:
		return l.endNumber(false, ch)
	}
	return nil
}

func (l *Lexer) doNumberNegative(ch rune) error {
	switch {
	case ch == '0':
		l.buf = append(l.buf, '0')
		l.state = NumberValueLeadingZero
	case isDigit(ch):
		l.buf = append(l.buf, byte(ch))
		l.state = NumberValue
	default:
		return l.fail(ErrDigitAfterSign, "expected digit after negative sign, got %q", ch)
	}
	return nil
}

func (l *Lexer) doNumberLeadingZero(ch rune) error {
	switch {
	case ch == '.':
		l.buf = append(l.buf, '.')
		l.state = NumberValueDecimal
	case ch == 'e' || ch == 'E':
		l.buf = append(l.buf, 'e')
		l.state = NumberValueExponentStart
	default:
		return l.endNumber(false, ch)
	}
	return nil
}

func (l *Lexer) doNumberDecimal(ch rune) error {
	switch {
	case isDigit(ch):
		l.buf = append(l.buf, byte(ch))
	case l.lastIs('.'):
		return l.fail(ErrDigitAfterDecimalPoint, "expected digit after decimal point, got %q", ch)
	case ch == 'e' || ch == 'E':
		l.buf = append(l.buf, 'e')
		l.state = NumberValueExponentStart
	default:
		return l.endNumber(true, ch)
	}
	return nil
}

func (l *Lexer) doNumberExponentStart(ch rune) error {
	if ch != '+' && ch != '-' && !isDigit(ch) {
		return l.fail(ErrExponentDigit, "expected digit or +/- in exponent, got %q", ch)
	}
	l.buf = append(l.buf, byte(ch))
	l.state = NumberValueExponent
	return nil
}

func (l *Lexer) doNumberExponent(ch rune) error {
	switch {
	case isDigit(ch):
		l.buf = append(l.buf, byte(ch))
	case l.lastIs('+') || l.lastIs('-'):
		return l.fail(ErrExponentDigit, "expected digit in exponent, got %q", ch)
	default:
		return l.endNumber(true, ch)
	}
	return nil
}

func (l *Lexer) doKeyword(ch rune, want string, value any) error {
	l.buf = utf8.AppendRune(l.buf, ch)
	got := mem.B(l.buf)
	if got.Equal(mem.S(want)) {
		if value == nil {
			return l.emit(NullLiteral, nil)
		}
		return l.emit(BooleanLiteral, value)
	} else if mem.HasPrefix(mem.S(want), got) {
		return nil // keep waiting
	}
	return l.fail(ErrMalformedKeyword, "expected %q, got %q", want, got.StringCopy())
}

// endNumber emits the number in progress and then dispatches the character
// that terminated it, which may begin another token.
func (l *Lexer) endNumber(isFloat bool, next rune) error {
	if err := l.emitNumber(isFloat); err != nil {
		return err
	}
	return l.doBegin(next)
}

// emitNumber emits the number in progress. Integers that do not fit in an
// int64 are emitted as float64.
func (l *Lexer) emitNumber(isFloat bool) error {
	text := string(l.buf)
	if !isFloat {
		if z, err := strconv.ParseInt(text, 10, 64); err == nil {
			return l.emit(NumberLiteral, z)
		}
	}
	// The grammar is already checked, so the only possible error is a range
	// error, for which ParseFloat returns ±Inf.
	f, _ := strconv.ParseFloat(text, 64)
	return l.emit(NumberLiteral, f)
}

// begin starts a new token in the given state.
func (l *Lexer) begin(state LexerState) {
	l.state = state
	l.start = l.loc.LineCol
	l.buf = l.buf[:0]
}

// emit delivers a completed literal token and returns to the Begin state.
func (l *Lexer) emit(typ TokenType, value any) error {
	tok := Token{Type: typ, Value: value, Loc: l.start}
	l.state = Begin
	l.buf = l.buf[:0]
	return l.sink(tok)
}

func (l *Lexer) lastIs(b byte) bool { return len(l.buf) != 0 && l.buf[len(l.buf)-1] == b }

func (l *Lexer) fail(kind error, msg string, args ...any) error {
	return &LexError{
		Location: l.loc.LineCol,
		Message:  fmt.Sprintf(msg, args...),
		err:      kind,
	}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

func isHighSurrogate(cp rune) bool { return cp >= 0xd800 && cp <= 0xdbff }
func isLowSurrogate(cp rune) bool  { return cp >= 0xdc00 && cp <= 0xdfff }

func hexValue(ch rune) (rune, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}
