package models

import (
	"encoding/json"
	"strings"
)

// FlexKind discriminates the source shape of a list-valued field.
type FlexKind int

const (
	FlexAbsent FlexKind = iota // field was null or missing
	FlexList                   // field arrived as a native list
	FlexText                   // field arrived as serialized text
)

// FlexStrings is a tagged union for fields that are logically a list of
// strings but may arrive as a native list, as serialized text (a list
// round-tripped through a text format), or not at all.
//
// All call sites resolve the union through [FlexStrings.Strings]; no ad hoc
// shape inspection happens elsewhere.
type FlexStrings struct {
	Kind FlexKind
	List []string
	Text string
}

// FlexListOf constructs a FlexStrings holding a native list.
func FlexListOf(values ...string) FlexStrings {
	return FlexStrings{Kind: FlexList, List: values}
}

// FlexTextOf constructs a FlexStrings holding serialized text.
func FlexTextOf(text string) FlexStrings {
	return FlexStrings{Kind: FlexText, Text: text}
}

// Strings resolves the union to a concrete list.
//
// Native lists pass through unchanged. Serialized text is parsed as a JSON
// array, with a second attempt rewriting single-quoted literals. Absent
// values and unparseable text both resolve to an empty list.
func (f FlexStrings) Strings() []string {
	switch f.Kind {
	case FlexList:
		if f.List == nil {
			return []string{}
		}
		return f.List
	case FlexText:
		return parseListText(f.Text)
	default:
		return []string{}
	}
}

// UnmarshalJSON accepts a JSON array, a JSON string, or null.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = FlexStrings{Kind: FlexAbsent}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = FlexStrings{Kind: FlexList, List: list}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f = FlexStrings{Kind: FlexText, Text: text}
		return nil
	}

	// Unrecognized shape degrades to absent rather than failing the record.
	*f = FlexStrings{Kind: FlexAbsent}
	return nil
}

// MarshalJSON preserves the source shape.
func (f FlexStrings) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FlexList:
		if f.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.List)
	case FlexText:
		return json.Marshal(f.Text)
	default:
		return []byte("null"), nil
	}
}

// parseListText parses serialized list text into a list of strings.
func parseListText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list
	}

	// Python reprs use single quotes: ['pop', 'rock']
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && !strings.Contains(text, `"`) {
		rewritten := strings.ReplaceAll(text, "'", `"`)
		if err := json.Unmarshal([]byte(rewritten), &list); err == nil {
			return list
		}
	}

	return []string{}
}
