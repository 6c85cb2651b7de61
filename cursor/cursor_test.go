// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jfeed"
	"github.com/creachadair/jfeed/cursor"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

func mustParseOne(t *testing.T, mode jfeed.ObjectMode) any {
	t.Helper()
	vs, err := jfeed.Parse([]byte(testJSON), &jfeed.Options{Objects: mode})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	} else if len(vs) != 1 {
		t.Fatalf("Parse: got %d values, want 1", len(vs))
	}
	return vs[0]
}

func TestCursor(t *testing.T) {
	v := mustParseOne(t, jfeed.AsMap)
	root := v.(map[string]any)

	tests := []struct {
		name string
		path []any
		want any
		fail bool
	}{
		{"NilInput", nil, v, false},
		{"NoMatch", []any{"nonesuch"}, v, true},
		{"WrongType", []any{11}, v, true},

		{"ArrayPos", []any{"list", 1}, root["list"].([]any)[1], false},
		{"ArrayNeg", []any{"list", -1}, root["list"].([]any)[1], false},
		{"ArrayRange", []any{"o", 25}, root["o"], true},
		{"ObjPath", []any{"xyz", "d"}, true, false},
		{"Nested", []any{"list", 0, "x"}, int64(1), false},

		{"FuncArray", []any{"o", testPathFunc}, 2, false},
		{"FuncObj", []any{"xyz", testPathFunc}, 3, false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc}, true, true},
		{"BadElement", []any{3.5}, v, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(v).Down(tc.path...)
			err := c.Err()
			if err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Down %+v: unexpected error: %v", tc.path, err)
				}
			} else if tc.fail {
				t.Errorf("Down %+v: got no error, want one", tc.path)
			}
			if diff := cmp.Diff(c.Value(), tc.want); diff != "" {
				t.Errorf("Down %+v: wrong result (-got, +want):\n%s", tc.path, diff)
			}
		})
	}
}

func TestCursorObject(t *testing.T) {
	v := mustParseOne(t, jfeed.AsObject)

	t.Run("Key", func(t *testing.T) {
		got, err := cursor.Path[string](v, "y", "hello")
		if err != nil {
			t.Fatalf("Path: %v", err)
		} else if got != "there" {
			t.Errorf("Path: got %q, want %q", got, "there")
		}
	})
	t.Run("Index", func(t *testing.T) {
		// Members of an *Object are ordered, so they can be indexed.
		got, err := cursor.Path[bool](v, "xyz", -1)
		if err != nil {
			t.Fatalf("Path: %v", err)
		} else if got {
			t.Errorf("Path: got %v, want false", got)
		}
	})
	t.Run("WrongType", func(t *testing.T) {
		got, err := cursor.Path[string](v, "list")
		if err == nil {
			t.Errorf("Path: got %v, want error", got)
		}
	})
	t.Run("Navigate", func(t *testing.T) {
		c := cursor.New(v).Down("list", 0)
		if err := c.Err(); err != nil {
			t.Fatalf("Down: %v", err)
		}
		if got := len(c.Path()); got != 3 {
			t.Errorf("Path length: got %d, want 3", got)
		}
		obj := c.Up().Up().Value().(*jfeed.Object)
		if diff := cmp.Diff(obj.Keys(), []string{"list", "y", "o", "xyz"}); diff != "" {
			t.Errorf("Keys (-got, +want):\n%s", diff)
		}
		if !c.AtOrigin() {
			t.Error("Cursor should be at origin")
		}
		c.Down("y").Reset()
		if diff := cmp.Diff(c.Value(), c.Origin(), cmpopts.IgnoreUnexported(jfeed.Object{})); diff != "" {
			t.Errorf("Reset (-got, +want):\n%s", diff)
		}
	})
}

func testPathFunc(v any) (any, error) {
	switch t := v.(type) {
	case []any:
		return len(t), nil
	case map[string]any:
		return len(t), nil
	default:
		return nil, errors.New("not a thing with length")
	}
}
