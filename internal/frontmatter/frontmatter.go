// Package frontmatter implements a tolerant, line-oriented codec for the
// frontmatter block at the top of a markdown document.
//
// The codec is deliberately hand-rolled instead of delegating to a YAML
// library: single-key writes must leave every other key, the key order, and
// the entire body byte-identical, which a re-marshal cannot guarantee on
// user-edited text. The supported grammar is a YAML subset:
//
//	---
//	title: Some title
//	pages: 250
//	categories: ["a", "b"]
//	tags:
//	  - fiqh
//	  - usul/qawaid
//	---
//
// Scalars decode as bool (true/false), number (int or float), or string
// (JSON quotes stripped). A bracketed value is attempted as a JSON array and
// falls back to the raw string. Malformed input never raises; it degrades to
// the raw string.
package frontmatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const delim = "---"

// Map is an ordered frontmatter mapping preserving source key order.
type Map = orderedmap.OrderedMap[string, any]

// Pair is one frontmatter key/value used when rendering a new document.
type Pair struct {
	Key   string
	Value any
}

// Parse extracts the frontmatter block at offset 0 of text and decodes it
// into an ordered mapping. The second return is false when no block exists
// (which is not an error).
func Parse(text string) (*Map, bool) {
	block, _, ok := split(text)
	if !ok {
		return nil, false
	}

	m := orderedmap.New[string, any]()
	lines := strings.Split(block, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		key, raw, ok := splitKeyLine(line)
		if !ok {
			continue
		}
		if raw == "" {
			// Possible block list: collect following "- item" lines.
			items, consumed := collectListItems(lines[i+1:])
			if consumed > 0 {
				m.Set(key, items)
				i += consumed
				continue
			}
			m.Set(key, "")
			continue
		}
		m.Set(key, decodeScalar(raw))
	}
	return m, true
}

// Body returns the document text after the frontmatter block, or the whole
// text when no block exists.
func Body(text string) string {
	_, body, ok := split(text)
	if !ok {
		return text
	}
	return body
}

// SetKey replaces (or inserts) a single key in the frontmatter block,
// leaving every other key, the key order, and the body untouched. When the
// document has no block one is synthesized containing only the key.
func SetKey(text, key string, value any) string {
	block, body, ok := split(text)
	if !ok {
		return delim + "\n" + strings.Join(encodeKey(key, value), "\n") + "\n" + delim + "\n" + text
	}

	lines := strings.Split(block, "\n")
	var out []string
	replaced := false
	for i := 0; i < len(lines); i++ {
		k, raw, isKey := splitKeyLine(lines[i])
		if !isKey || k != key {
			out = append(out, lines[i])
			continue
		}
		// Swallow block-list continuation lines belonging to this key.
		if raw == "" {
			_, consumed := collectListItems(lines[i+1:])
			i += consumed
		}
		out = append(out, encodeKey(key, value)...)
		replaced = true
	}
	if !replaced {
		out = append(out, encodeKey(key, value)...)
	}
	return delim + "\n" + strings.Join(out, "\n") + "\n" + delim + body
}

// Render produces a complete document from ordered pairs and a body.
func Render(pairs []Pair, body string) string {
	var b strings.Builder
	b.WriteString(delim + "\n")
	for _, p := range pairs {
		for _, line := range encodeKey(p.Key, p.Value) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString(delim + "\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	return b.String()
}

// split separates the frontmatter block (without delimiters) from the rest
// of the document. body keeps its leading newline so the delimiter line can
// be reconstituted byte-exactly.
func split(text string) (block, body string, ok bool) {
	if !strings.HasPrefix(text, delim+"\n") {
		return "", "", false
	}
	rest := text[len(delim)+1:]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return "", "", false
	}
	after := rest[idx+1+len(delim):]
	// The closing delimiter must sit on its own line.
	if after != "" && !strings.HasPrefix(after, "\n") {
		return "", "", false
	}
	return rest[:idx], after, true
}

// splitKeyLine decodes a "key: value" line. A line that is indented, empty,
// or a list item is not a key line.
func splitKeyLine(line string) (key, value string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '-' || line[0] == '#' {
		return "", "", false
	}
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// collectListItems gathers leading "- item" lines and reports how many were
// consumed. Items keep their raw form apart from surrounding quote stripping.
func collectListItems(lines []string) ([]string, int) {
	var items []string
	n := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "- ") && t != "-" {
			break
		}
		n++
		item := strings.TrimSpace(strings.TrimPrefix(t, "-"))
		items = append(items, stripQuotes(item))
	}
	if items == nil {
		items = []string{}
	}
	return items, n
}

// decodeScalar coerces a raw value string: bool, number, JSON array, quoted
// string, raw string — in that order, falling back on any failure.
func decodeScalar(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.HasPrefix(raw, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return toStringsIfAll(arr)
		}
		return raw
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
	}
	return stripQuotes(raw)
}

// toStringsIfAll flattens a JSON array into []string when every element is
// a string, which is the common case for tags and categories.
func toStringsIfAll(arr []any) any {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return arr
		}
		out = append(out, s)
	}
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// inlineListMax is the element count above which (or when any element is
// long) a list serializes as a multi-line block instead of inline JSON.
const (
	inlineListMax    = 5
	inlineElementMax = 40
)

// encodeKey serializes one key to its frontmatter line(s). Lists use inline
// JSON form for few short elements and block "- " form otherwise; the parser
// accepts both.
func encodeKey(key string, value any) []string {
	switch v := value.(type) {
	case []string:
		if inlineable(v) {
			data, err := json.Marshal(v)
			if err == nil {
				return []string{key + ": " + string(data)}
			}
		}
		lines := []string{key + ":"}
		for _, item := range v {
			lines = append(lines, "  - "+encodeListItem(item))
		}
		return lines
	case string:
		return []string{key + ": " + encodeString(v)}
	case nil:
		return []string{key + ":"}
	default:
		return []string{fmt.Sprintf("%s: %v", key, v)}
	}
}

func inlineable(items []string) bool {
	if len(items) > inlineListMax {
		return false
	}
	for _, it := range items {
		if len(it) > inlineElementMax || strings.ContainsAny(it, `"{}`) {
			return false
		}
	}
	return true
}

// encodeListItem writes a block-list item. JSON-shaped items (benefit
// entries) stay raw so re-parsing returns them verbatim.
func encodeListItem(item string) string {
	if strings.HasPrefix(item, "{") || strings.HasPrefix(item, "[") {
		return item
	}
	return encodeString(item)
}

// encodeString quotes only when the raw form would not round-trip.
func encodeString(s string) string {
	if s == "" {
		return `""`
	}
	if strings.TrimSpace(s) != s || s == "true" || s == "false" {
		return strconv.Quote(s)
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		// Numeric-looking strings keep their raw form; mappers coerce back.
		return s
	}
	return s
}
