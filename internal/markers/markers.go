// Package markers manages named, delimited regions inside a document body.
// Each region is fenced by an HTML-comment pair keyed on a record id:
//
//	<!-- start:ID -->
//	...content...
//	<!-- end:ID -->
//
// Regions are inserted under a section heading and addressed only by id, so
// surrounding body text is never touched.
package markers

import "strings"

// Start and End return the delimiter lines for id.
func Start(id string) string { return "<!-- start:" + id + " -->" }
func End(id string) string   { return "<!-- end:" + id + " -->" }

// Wrap renders inner content fenced by the delimiter pair for id.
func Wrap(id, inner string) string {
	return Start(id) + "\n" + strings.TrimRight(inner, "\n") + "\n" + End(id)
}

// Has reports whether text contains the start marker for id.
func Has(text, id string) bool {
	return strings.Contains(text, Start(id))
}

// Upsert replaces the whole [start..end] span for id with block (which must
// already be marker-wrapped). When the marker is absent the block is inserted
// under heading: directly after the heading line, before the next "## "
// heading or end of document. A missing heading is appended at the end.
//
// Updates in place never relocate a block; fresh inserts append after any
// blocks already under the heading, preserving insertion order.
func Upsert(text, id, block, heading string) string {
	if start, end, ok := span(text, id); ok {
		return text[:start] + block + text[end:]
	}

	headIdx := lineIndex(text, heading)
	if headIdx < 0 {
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text + "\n" + heading + "\n\n" + block + "\n"
	}

	// Insert before the next section heading after ours, or at EOF.
	afterHead := headIdx + len(heading)
	insertAt := len(text)
	if next := nextHeading(text, afterHead); next >= 0 {
		insertAt = next
	}
	head := strings.TrimRight(text[:insertAt], "\n")
	tail := text[insertAt:]
	return head + "\n\n" + block + "\n" + tail
}

// Extract returns the inner text between the markers for id (delimiters
// excluded), or ok=false when the pair is absent or mismatched.
func Extract(text, id string) (string, bool) {
	start, end, ok := span(text, id)
	if !ok {
		return "", false
	}
	inner := text[start+len(Start(id)) : end-len(End(id))]
	return strings.Trim(inner, "\n"), true
}

// Remove deletes the whole [start..end] span for id. Removing an absent
// block returns the text unchanged with ok=false.
func Remove(text, id string) (string, bool) {
	start, end, ok := span(text, id)
	if !ok {
		return text, false
	}
	head := strings.TrimRight(text[:start], "\n")
	tail := strings.TrimLeft(text[end:], "\n")
	if head == "" {
		return tail, true
	}
	if tail == "" {
		return head + "\n", true
	}
	return head + "\n\n" + tail, true
}

// span locates the inclusive [start..end-marker-end) byte range for id.
// A start marker without its matching end marker is treated as absent: the
// malformed pair must not be half-edited.
func span(text, id string) (int, int, bool) {
	start := strings.Index(text, Start(id))
	if start < 0 {
		return 0, 0, false
	}
	endMark := End(id)
	rel := strings.Index(text[start:], endMark)
	if rel < 0 {
		return 0, 0, false
	}
	return start, start + rel + len(endMark), true
}

// lineIndex finds the byte offset of a line exactly equal to want.
func lineIndex(text, want string) int {
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimRight(line, " \t") == want {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}

// nextHeading returns the offset of the first "## "-level heading line at or
// after from, or -1.
func nextHeading(text string, from int) int {
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if offset >= from && strings.HasPrefix(line, "## ") {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}
