// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creachadair/jfeed/internal/escape"
	"go4.org/mem"
)

// TokenType is the type of a lexical token in the JSON grammar.
type TokenType byte

// Constants defining the valid TokenType values.
const (
	Invalid        TokenType = iota // invalid token
	BraceOpen                       // left brace "{"
	BraceClose                      // right brace "}"
	BracketOpen                     // left square bracket "["
	BracketClose                    // right square bracket "]"
	Colon                           // colon ":"
	Comma                           // comma ","
	StringLiteral                   // quoted string
	BooleanLiteral                  // constant: true or false
	NullLiteral                     // constant: null
	NumberLiteral                   // number: integer or floating-point

	// Do not modify the order of these constants without updating the
	// special token table below.
)

var tokenStr = [...]string{
	Invalid:        "INVALID",
	BraceOpen:      "BRACE_OPEN",
	BraceClose:     "BRACE_CLOSE",
	BracketOpen:    "BRACKET_OPEN",
	BracketClose:   "BRACKET_CLOSE",
	Colon:          "COLON",
	Comma:          "COMMA",
	StringLiteral:  "STRING_LITERAL",
	BooleanLiteral: "BOOLEAN_LITERAL",
	NullLiteral:    "NULL_LITERAL",
	NumberLiteral:  "NUMBER_LITERAL",
}

func (t TokenType) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// IsLiteral reports whether t is the type of a scalar literal token.
func (t TokenType) IsLiteral() bool { return t >= StringLiteral && t <= NumberLiteral }

// A Token is a single lexical unit of JSON: either a special structural
// character, or a scalar literal carrying its decoded value.
//
// The Value of a literal token has one of the concrete types string, int64,
// float64, bool, or nil (for null). The Value of a special token is nil.
type Token struct {
	Type  TokenType
	Value any
	Loc   LineCol // where the token begins in the input
}

// String renders the token for diagnostics.
func (t Token) String() string {
	if !t.Type.IsLiteral() {
		if t.Type == Invalid {
			return t.Type.String()
		}
		i := t.Type - BraceOpen
		return fmt.Sprintf("%s %q", t.Type, specials[i:i+1])
	}
	return t.Type.String() + " " + formatScalar(t.Value)
}

const specials = "{}[]:,"

var specialType = [...]TokenType{BraceOpen, BraceClose, BracketOpen, BracketClose, Colon, Comma}

// SpecialToken returns a special token for the structural character ch, and
// reports whether ch is one of "{}[]:,".
func SpecialToken(ch rune) (Token, bool) {
	i := strings.IndexRune(specials, ch)
	if i < 0 {
		return Token{Type: Invalid}, false
	}
	return Token{Type: specialType[i]}, true
}

// LiteralToken returns a literal token carrying v. The value must be a string,
// bool, nil, or a signed integer or floating-point number. Integers are
// widened to int64 and float32 to float64. LiteralToken panics if v does not
// have one of those types.
func LiteralToken(v any) Token {
	switch t := v.(type) {
	case nil:
		return Token{Type: NullLiteral}
	case string:
		return Token{Type: StringLiteral, Value: t}
	case bool:
		return Token{Type: BooleanLiteral, Value: t}
	case int:
		return Token{Type: NumberLiteral, Value: int64(t)}
	case int32:
		return Token{Type: NumberLiteral, Value: int64(t)}
	case int64:
		return Token{Type: NumberLiteral, Value: t}
	case float32:
		return Token{Type: NumberLiteral, Value: float64(t)}
	case float64:
		return Token{Type: NumberLiteral, Value: t}
	default:
		panic(fmt.Sprintf("invalid literal value %T", v))
	}
}

// formatScalar renders a scalar value in JSON notation.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return Quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	return string(escape.AppendQuote(nil, mem.S(src)))
}
