package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlexStrings(t *testing.T) {
	t.Run("Strings", func(t *testing.T) {
		tests := []struct {
			name  string
			input FlexStrings
			want  []string
		}{
			{
				name:  "native list passes through",
				input: FlexListOf("pop", "rock"),
				want:  []string{"pop", "rock"},
			},
			{
				name:  "serialized JSON list parses",
				input: FlexTextOf(`["pop","rock"]`),
				want:  []string{"pop", "rock"},
			},
			{
				name:  "serialized single-quoted list parses",
				input: FlexTextOf(`['pop', 'rock']`),
				want:  []string{"pop", "rock"},
			},
			{
				name:  "unparseable text yields empty list",
				input: FlexTextOf("oops"),
				want:  []string{},
			},
			{
				name:  "absent yields empty list",
				input: FlexStrings{Kind: FlexAbsent},
				want:  []string{},
			},
			{
				name:  "zero value yields empty list",
				input: FlexStrings{},
				want:  []string{},
			},
			{
				name:  "empty text yields empty list",
				input: FlexTextOf(""),
				want:  []string{},
			},
			{
				name:  "nil native list yields empty list",
				input: FlexStrings{Kind: FlexList},
				want:  []string{},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := tt.input.Strings()
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Strings() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("UnmarshalJSON", func(t *testing.T) {
		tests := []struct {
			name     string
			payload  string
			wantKind FlexKind
			want     []string
		}{
			{name: "array", payload: `["a","b"]`, wantKind: FlexList, want: []string{"a", "b"}},
			{name: "string", payload: `"[\"a\",\"b\"]"`, wantKind: FlexText, want: []string{"a", "b"}},
			{name: "null", payload: `null`, wantKind: FlexAbsent, want: []string{}},
			{name: "number degrades to absent", payload: `42`, wantKind: FlexAbsent, want: []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var f FlexStrings
				if err := json.Unmarshal([]byte(tt.payload), &f); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if f.Kind != tt.wantKind {
					t.Errorf("kind = %v, want %v", f.Kind, tt.wantKind)
				}
				if got := f.Strings(); !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Strings() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("MarshalJSON preserves source shape", func(t *testing.T) {
		tests := []struct {
			name  string
			input FlexStrings
			want  string
		}{
			{name: "list", input: FlexListOf("a"), want: `["a"]`},
			{name: "nil list", input: FlexStrings{Kind: FlexList}, want: `[]`},
			{name: "text", input: FlexTextOf("oops"), want: `"oops"`},
			{name: "absent", input: FlexStrings{}, want: `null`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				data, err := json.Marshal(tt.input)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(data) != tt.want {
					t.Errorf("marshal = %s, want %s", data, tt.want)
				}
			})
		}
	})

	t.Run("round trip through JSON", func(t *testing.T) {
		original := FlexListOf("pop", "rock")

		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded FlexStrings
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if !reflect.DeepEqual(decoded.Strings(), original.Strings()) {
			t.Errorf("round trip changed values: %v != %v", decoded.Strings(), original.Strings())
		}
	})
}
