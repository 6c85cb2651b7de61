// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Program jfeed reads a stream of JSON values and prints either the values
// or the structural events that describe them.
//
// Usage:
//
//	jfeed [flags] [file ...]
//
// If no files are given, jfeed reads from stdin. Input compressed with gzip,
// zstd, or lz4 is decompressed automatically. Each value is printed as a line
// of compact JSON; with -events, each event is printed on its own line.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/creachadair/jfeed"
	"github.com/creachadair/jfeed/internal/source"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	doEvents  = flag.Bool("events", false, "Print events instead of values")
	doOrdered = flag.Bool("ordered", false, "Preserve the order of object members")
	doHuJSON  = flag.Bool("hujson", false, "Accept HuJSON comments and trailing commas")
	chunkSize = flag.Int("chunk", 8192, "Feed input in chunks of this many bytes")
	encName   = flag.String("encoding", "utf-8", "Input encoding (utf-8, utf-16le, utf-16be, latin1)")
)

var encodings = map[string]encoding.Encoding{
	"utf-8":    nil,
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"latin1":   charmap.ISO8859_1,
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [file ...]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("jfeed: ")

	enc, ok := encodings[strings.ToLower(*encName)]
	if !ok {
		log.Fatalf("Unknown encoding %q", *encName)
	} else if *chunkSize <= 0 {
		log.Fatalf("Invalid chunk size %d", *chunkSize)
	} else if *doHuJSON && enc != nil {
		log.Fatal("The -hujson flag requires UTF-8 input")
	}
	opts := &jfeed.Options{Encoding: enc}
	if *doOrdered {
		opts.Objects = jfeed.AsObject
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, name := range args {
		if err := processFile(name, opts); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
	}
}

func processFile(name string, opts *jfeed.Options) error {
	var in io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	rc, format, err := source.NewReader(in)
	if err != nil {
		return err
	}
	defer rc.Close()
	if format != source.Plain {
		log.Printf("%s: decompressing %v input", name, format)
	}

	if *doHuJSON {
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		vs, err := jfeed.NewParser(opts).ParseHuJSON(data)
		if err != nil {
			return err
		}
		return printValues(vs)
	}

	if *doEvents {
		return printEvents(rc, opts)
	}
	p := jfeed.NewParser(opts)
	if err := feedChunks(rc, p.Feed, func() error { return printValues(p.Values()) }); err != nil {
		return err
	} else if err := p.Finalize(); err != nil {
		return err
	}
	return printValues(p.Values())
}

func printEvents(r io.Reader, opts *jfeed.Options) error {
	p := jfeed.NewEventedParser(opts)
	var perr error
	p.On(jfeed.EventError, func(ev jfeed.Event) error {
		perr = ev.Err
		return nil
	})
	for _, t := range []jfeed.EventType{
		jfeed.EventDocumentOpen, jfeed.EventDocumentClose,
		jfeed.EventArrayOpen, jfeed.EventArrayClose,
		jfeed.EventObjectOpen, jfeed.EventObjectClose,
		jfeed.EventObjectKey, jfeed.EventValue,
	} {
		p.On(t, func(ev jfeed.Event) error {
			fmt.Println(ev)
			return nil
		})
	}
	check := func() error { return perr }
	if err := feedChunks(r, p.Feed, check); err != nil {
		return err
	} else if err := p.Finalize(); err != nil {
		return err
	}
	return check()
}

// feedChunks reads r in chunks of the requested size and passes each chunk
// to feed, calling after when each chunk has been consumed.
func feedChunks(r io.Reader, feed func([]byte) error, after func() error) error {
	buf := make([]byte, *chunkSize)
	for {
		nr, err := io.ReadFull(r, buf)
		if nr > 0 {
			if ferr := feed(buf[:nr]); ferr != nil {
				return ferr
			} else if aerr := after(); aerr != nil {
				return aerr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func printValues(vs []any) error {
	for _, v := range vs {
		text, err := formatValue(v)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}
	return nil
}

// formatValue renders v as compact JSON, preserving the member order of each
// *jfeed.Object.
func formatValue(v any) (string, error) {
	var sb strings.Builder
	var walk func(any) error
	walk = func(v any) error {
		switch t := v.(type) {
		case *jfeed.Object:
			sb.WriteByte('{')
			for i, m := range t.Members {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(jfeed.Quote(m.Key))
				sb.WriteByte(':')
				if err := walk(m.Value); err != nil {
					return err
				}
			}
			sb.WriteByte('}')
		case []any:
			sb.WriteByte('[')
			for i, elt := range t {
				if i > 0 {
					sb.WriteByte(',')
				}
				if err := walk(elt); err != nil {
					return err
				}
			}
			sb.WriteByte(']')
		default:
			bits, err := json.Marshal(t)
			if err != nil {
				return err
			}
			sb.Write(bits)
		}
		return nil
	}
	if err := walk(v); err != nil {
		return "", err
	}
	return sb.String(), nil
}
