// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jfeed implements an incremental JSON lexer and parser.
//
// Input is delivered in chunks of any size, over any number of calls, and is
// never buffered as a whole. Chunk boundaries may fall anywhere, including in
// the middle of a token or of a multi-byte character.
//
// # Lexing
//
// The Lexer type converts a stream of characters into tokens. Construct a
// lexer with a sink function, call Feed with each chunk of input, and call
// Finalize at the end of the input. Each token is passed to the sink as soon
// as it is complete:
//
//	lex := jfeed.NewLexer(nil, func(tok jfeed.Token) error {
//	   log.Printf("Next token: %v", tok)
//	   return nil
//	})
//	if err := lex.Feed(chunk); err != nil {
//	   log.Fatalf("Lexing failed: %v", err)
//	}
//
// # Token parsing
//
// The TokenParser type converts a stream of tokens into structural events:
//
//	Event              | Description
//	------------------ | ---------------------------------------
//	EventArrayOpen     | [
//	EventArrayClose    | ]
//	EventObjectOpen    | {
//	EventObjectClose   | }
//	EventObjectKey     | "key":
//	EventValue         | string, number, true, false, null
//
// The FeedToken method of a TokenParser is a TokenSink, so it can be wired
// directly to the output of a Lexer.
//
// # Parsing
//
// The Parser type combines a Lexer and a TokenParser, and materializes each
// complete top-level value:
//
//	p := jfeed.NewParser(nil)
//	for chunk := range input {
//	   if err := p.Feed(chunk); err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	   for _, v := range p.Values() {
//	      log.Printf("Value: %v", v)
//	   }
//	}
//	if err := p.Finalize(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// The EventedParser type instead delivers events to registered listeners,
// bracketing each top-level value with EventDocumentOpen and
// EventDocumentClose.
//
// # Errors
//
// Lexical errors have concrete type *LexError and structural errors have
// concrete type *ParseError. Use errors.Is with the Err* sentinels to
// distinguish particular kinds. After an error, a Parser or EventedParser is
// reset and ready for new input; no partial state survives the error.
package jfeed
