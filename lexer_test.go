// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jfeed_test

import (
	"errors"
	"math"
	"testing"

	"github.com/creachadair/jfeed"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

var ignoreLoc = cmpopts.IgnoreFields(jfeed.Token{}, "Loc")

// lexChunks lexes the concatenation of chunks, feeding each separately, and
// returns the tokens produced.
func lexChunks(enc encoding.Encoding, chunks ...string) ([]jfeed.Token, error) {
	var got []jfeed.Token
	lex := jfeed.NewLexer(enc, func(tok jfeed.Token) error {
		got = append(got, tok)
		return nil
	})
	for _, chunk := range chunks {
		if err := lex.Feed([]byte(chunk)); err != nil {
			return got, err
		}
	}
	err := lex.Finalize()
	return got, err
}

// bytewise splits s into single-byte chunks.
func bytewise(s string) []string {
	out := make([]string, len(s))
	for i := range len(s) {
		out[i] = s[i : i+1]
	}
	return out
}

func special(ch rune) jfeed.Token {
	tok, ok := jfeed.SpecialToken(ch)
	if !ok {
		panic("invalid special token")
	}
	return tok
}

func lit(v any) jfeed.Token { return jfeed.LiteralToken(v) }

func TestLexer(t *testing.T) {
	tests := []struct {
		input string
		want  []jfeed.Token
	}{
		{"", nil},
		{"  \t\r\n ", nil},
		{"{}[]:,", []jfeed.Token{
			special('{'), special('}'), special('['), special(']'), special(':'), special(','),
		}},
		{"true false null", []jfeed.Token{lit(true), lit(false), lit(nil)}},
		{`[1,true,null,"a\nb"]`, []jfeed.Token{
			special('['), lit(1), special(','), lit(true), special(','),
			lit(nil), special(','), lit("a\nb"), special(']'),
		}},
		{`{"key": -25}`, []jfeed.Token{
			special('{'), lit("key"), special(':'), lit(-25), special('}'),
		}},

		// Numbers.
		{"0", []jfeed.Token{lit(0)}},
		{"-0", []jfeed.Token{lit(0)}},
		{"1.5e3", []jfeed.Token{lit(1500.0)}},
		{"1E2", []jfeed.Token{lit(100.0)}},
		{"2.5e-1", []jfeed.Token{lit(0.25)}},
		{"-0.5", []jfeed.Token{lit(-0.5)}},
		{"3e+2", []jfeed.Token{lit(300.0)}},
		{"0{", []jfeed.Token{lit(0), special('{')}},
		{"12,", []jfeed.Token{lit(12), special(',')}},
		{"1 2 3", []jfeed.Token{lit(1), lit(2), lit(3)}},
		{"9223372036854775807", []jfeed.Token{lit(int64(math.MaxInt64))}},
		{"12345678901234567890", []jfeed.Token{lit(12345678901234567890.0)}},

		// Strings and escapes.
		{`""`, []jfeed.Token{lit("")}},
		{`"\"\\\/\b\f\n\r\t"`, []jfeed.Token{lit("\"\\/\b\f\n\r\t")}},
		{`"éé"`, []jfeed.Token{lit("éé")}},
		{`"𝄞"`, []jfeed.Token{lit("𝄞")}},
		{`"caf` + "é" + ` ☕"`, []jfeed.Token{lit("café ☕")}},
		{"\"a\tb\"", []jfeed.Token{lit("a\tb")}},
	}
	for _, tc := range tests {
		got, err := lexChunks(nil, tc.input)
		if err != nil {
			t.Errorf("Lex %q: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got, ignoreLoc); diff != "" {
			t.Errorf("Lex %q tokens (-want, +got):\n%s", tc.input, diff)
		}

		// Feeding the input one byte at a time must give the same result.
		bw, err := lexChunks(nil, bytewise(tc.input)...)
		if err != nil {
			t.Errorf("Lex %q bytewise: unexpected error: %v", tc.input, err)
		} else if diff := cmp.Diff(got, bw); diff != "" {
			t.Errorf("Lex %q bytewise (-whole, +bytewise):\n%s", tc.input, diff)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"@", jfeed.ErrUnexpectedCharacter},
		{"[1;2]", jfeed.ErrUnexpectedCharacter},
		{"'a'", jfeed.ErrUnexpectedCharacter},
		{`"\q"`, jfeed.ErrInvalidEscape},
		{`"\u12G4"`, jfeed.ErrInvalidEscape},
		{"-a", jfeed.ErrDigitAfterSign},
		{"-", jfeed.ErrUnterminatedLiteral},
		{"1.x", jfeed.ErrDigitAfterDecimalPoint},
		{"1.", jfeed.ErrDigitAfterDecimalPoint},
		{"1.e5", jfeed.ErrDigitAfterDecimalPoint},
		{"1ex", jfeed.ErrExponentDigit},
		{"1e+x", jfeed.ErrExponentDigit},
		{"1e+", jfeed.ErrExponentDigit},
		{"1e", jfeed.ErrUnterminatedLiteral},
		{"tru ", jfeed.ErrMalformedKeyword},
		{"nul1", jfeed.ErrMalformedKeyword},
		{"fals", jfeed.ErrUnterminatedLiteral},
		{"True", jfeed.ErrUnexpectedCharacter},
		{`"\ud834\ud834"`, jfeed.ErrMultipleHighSurrogates},
		{`"\udd1e"`, jfeed.ErrMissingHighSurrogate},
		{`"\ud834x"`, jfeed.ErrMissingLowSurrogate},
		{`"\ud834"`, jfeed.ErrMissingLowSurrogate},
		{`"\ud834\n"`, jfeed.ErrMissingLowSurrogate},
		{`"\ud834A"`, jfeed.ErrMissingLowSurrogate},
		{`"abc`, jfeed.ErrUnterminatedLiteral},
		{`"\u00`, jfeed.ErrUnterminatedLiteral},
		{"\"\xff\"", jfeed.ErrInvalidEncoding},
		{"\"\xc3", jfeed.ErrInvalidEncoding}, // incomplete character at end
	}
	for _, tc := range tests {
		_, err := lexChunks(nil, tc.input)
		if !errors.Is(err, tc.want) {
			t.Errorf("Lex %q: got error %v, want %v", tc.input, err, tc.want)
		}
		var lerr *jfeed.LexError
		if !errors.As(err, &lerr) {
			t.Errorf("Lex %q: got error %T, want *LexError", tc.input, err)
		}

		_, err = lexChunks(nil, bytewise(tc.input)...)
		if !errors.Is(err, tc.want) {
			t.Errorf("Lex %q bytewise: got error %v, want %v", tc.input, err, tc.want)
		}
	}
}

func TestLexerErrorText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"[tru]", `at 1:4: expected "true", got "tru]"`},
		{"\n  @", `at 2:2: unexpected character '@'`},
		{`"\x"`, `at 1:2: invalid escape sequence "\\x"`},
		{`"abc`, `at 1:4: character stream ended while scanning literal value`},
	}
	for _, tc := range tests {
		_, err := lexChunks(nil, tc.input)
		if err == nil {
			t.Errorf("Lex %q: got nil error, want %q", tc.input, tc.want)
		} else if got := err.Error(); got != tc.want {
			t.Errorf("Lex %q: got error %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLexerLocation(t *testing.T) {
	const input = "[\n  1,\"x\",\n\"é\" ]"
	got, err := lexChunks(nil, input)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	var locs []string
	for _, tok := range got {
		locs = append(locs, tok.Loc.String())
	}
	want := []string{"1:0", "2:2", "2:3", "2:4", "2:7", "3:0", "3:4"}
	if diff := cmp.Diff(want, locs); diff != "" {
		t.Errorf("Token locations (-want, +got):\n%s", diff)
	}

	lex := jfeed.NewLexer(nil, func(jfeed.Token) error { return nil })
	if err := lex.Feed([]byte("[\"é\",\n1")); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if diff := cmp.Diff(jfeed.Location{
		Offset: 7, LineCol: jfeed.LineCol{Line: 2, Column: 1},
	}, lex.Location()); diff != "" {
		t.Errorf("Location (-want, +got):\n%s", diff)
	}
}

func TestLexerState(t *testing.T) {
	var got []jfeed.Token
	lex := jfeed.NewLexer(nil, func(tok jfeed.Token) error {
		got = append(got, tok)
		return nil
	})
	steps := []struct {
		input string
		want  jfeed.LexerState
	}{
		{`"ab`, jfeed.StringValue},
		{`\`, jfeed.StringValueEscaped},
		{`u00`, jfeed.StringValueUnicode},
		{`41"`, jfeed.Begin},
		{`tr`, jfeed.TrueValue},
		{`ue -`, jfeed.NumberValueNegative},
		{`0`, jfeed.NumberValueLeadingZero},
		{`.`, jfeed.NumberValueDecimal},
		{`5e`, jfeed.NumberValueExponentStart},
		{`-1`, jfeed.NumberValueExponent},
		{` n`, jfeed.NullValue},
		{`ull 12`, jfeed.NumberValue},
		{`,f`, jfeed.FalseValue},
	}
	for _, s := range steps {
		if err := lex.Feed([]byte(s.input)); err != nil {
			t.Fatalf("Feed %q: unexpected error: %v", s.input, err)
		}
		if got := lex.State(); got != s.want {
			t.Errorf("After %q: state is %v, want %v", s.input, got, s.want)
		}
	}
	want := []jfeed.Token{lit("abA"), lit(true), lit(-0.05), lit(nil), lit(12), special(',')}
	if diff := cmp.Diff(want, got, ignoreLoc); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}

	// Reset discards the partial keyword.
	lex.Reset()
	if got := lex.State(); got != jfeed.Begin {
		t.Errorf("After Reset: state is %v, want %v", got, jfeed.Begin)
	}
	if err := lex.Finalize(); err != nil {
		t.Errorf("Finalize after Reset: unexpected error: %v", err)
	}

	if got, want := jfeed.LexerState(200).String(), "INVALID"; got != want {
		t.Errorf("Invalid state: got %q, want %q", got, want)
	}
	if got, want := jfeed.NumberValueExponentStart.String(), "NUMBER_VALUE_EXPONENT_START"; got != want {
		t.Errorf("State name: got %q, want %q", got, want)
	}
}

func TestLexerSplitCharacters(t *testing.T) {
	const input = `["é€𝄞", "ok"]`
	want := []jfeed.Token{special('['), lit("é€𝄞"), special(','), lit("ok"), special(']')}

	// Split the input at every possible position, including inside multibyte
	// characters.
	for i := range len(input) + 1 {
		got, err := lexChunks(nil, input[:i], input[i:])
		if err != nil {
			t.Errorf("Split at %d: unexpected error: %v", i, err)
		} else if diff := cmp.Diff(want, got, ignoreLoc); diff != "" {
			t.Errorf("Split at %d (-want, +got):\n%s", i, diff)
		}
	}
}

func TestLexerEncoding(t *testing.T) {
	const input = `{"name": "Zoë", "n": [1, 2.5]}`
	want := []jfeed.Token{
		special('{'), lit("name"), special(':'), lit("Zoë"), special(','),
		lit("n"), special(':'), special('['), lit(1), special(','), lit(2.5),
		special(']'), special('}'),
	}
	for _, tc := range []struct {
		name string
		enc  encoding.Encoding
	}{
		{"UTF16LE", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
		{"UTF16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
		{"Latin1", charmap.ISO8859_1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.enc.NewEncoder().String(input)
			if err != nil {
				t.Fatalf("Encode input: %v", err)
			}

			got, err := lexChunks(tc.enc, data)
			if err != nil {
				t.Fatalf("Lex: unexpected error: %v", err)
			}
			if diff := cmp.Diff(want, got, ignoreLoc); diff != "" {
				t.Errorf("Tokens (-want, +got):\n%s", diff)
			}

			bw, err := lexChunks(tc.enc, bytewise(data)...)
			if err != nil {
				t.Fatalf("Lex bytewise: unexpected error: %v", err)
			}
			if diff := cmp.Diff(got, bw); diff != "" {
				t.Errorf("Bytewise (-whole, +bytewise):\n%s", diff)
			}
		})
	}
}

func TestLexerSinkError(t *testing.T) {
	errStop := errors.New("stop")
	var n int
	lex := jfeed.NewLexer(nil, func(jfeed.Token) error {
		if n++; n == 3 {
			return errStop
		}
		return nil
	})
	if err := lex.Feed([]byte("[1, 2]")); !errors.Is(err, errStop) {
		t.Errorf("Feed: got error %v, want %v", err, errStop)
	}
	if n != 3 {
		t.Errorf("Sink called %d times, want 3", n)
	}
}

func TestLexerDecoderReplacement(t *testing.T) {
	// The decoder replaces an unpaired UTF-16 surrogate with U+FFFD before
	// the lexer sees it, so the string is accepted.
	input := []byte{'"', 0, 0x34, 0xd8, '"', 0}
	got, err := lexChunks(utf16LE, string(input))
	if err != nil {
		t.Fatalf("Lex: unexpected error: %v", err)
	}
	if diff := cmp.Diff([]jfeed.Token{lit("\ufffd")}, got, ignoreLoc); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestLexerNumberRange(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1e999", math.Inf(1)},
		{"-1e999", math.Inf(-1)},
		{"1e-999", 0},
	}
	for _, tc := range tests {
		got, err := lexChunks(nil, tc.input)
		if err != nil {
			t.Errorf("Lex %q: unexpected error: %v", tc.input, err)
			continue
		}
		if diff := cmp.Diff([]jfeed.Token{lit(tc.want)}, got, ignoreLoc); diff != "" {
			t.Errorf("Lex %q (-want, +got):\n%s", tc.input, diff)
		}
	}
}
