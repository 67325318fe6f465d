// Package mapper translates between typed records and the (frontmatter,
// body) pair of a vault document. One mapper per record kind; all numeric
// and list coercion is tolerant and never fails (bad input degrades to the
// zero value, mirroring how the documents are user-editable text).
package mapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/WallySa7/alrawi/internal/frontmatter"
)

// Defaults supplies configured fallback values applied on decode when a
// document omits an optional field.
type Defaults struct {
	Presenter   string
	Author      string
	Language    string
	VideoStatus string
	BookStatus  string
}

func getString(fm *frontmatter.Map, key string) string {
	v, ok := fm.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func getStringDefault(fm *frontmatter.Map, key, fallback string) string {
	if s := getString(fm, key); s != "" {
		return s
	}
	return fallback
}

// getInt coerces a frontmatter value to int with a 0 fallback.
func getInt(fm *frontmatter.Map, key string) int {
	v, ok := fm.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// getStringList coerces a frontmatter value to a string list. A scalar
// string is split on commas (the string→string-array coercion the documents
// occasionally need when hand-edited).
func getStringList(fm *frontmatter.Map, key string) []string {
	v, ok := fm.Get(key)
	if !ok || v == nil {
		return []string{}
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return splitCommaList(list)
	}
	return []string{}
}

func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DurationSeconds converts a duration string to seconds. Accepted forms are
// SS, MM:SS, and HH:MM:SS; anything unparseable yields 0.
func DurationSeconds(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
