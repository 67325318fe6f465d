package frontmatter

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDoc = "---\n" +
	"type: book\n" +
	"title: Sample\n" +
	"pages: 250\n" +
	"rating: 4\n" +
	"published: true\n" +
	"categories: [\"fiqh\", \"usul\"]\n" +
	"tags:\n" +
	"  - reading/2024\n" +
	"  - arabic\n" +
	"---\n" +
	"\n" +
	"Body text here.\n"

func TestParse_ScalarCoercion(t *testing.T) {
	m, ok := Parse(sampleDoc)
	if !ok {
		t.Fatal("expected frontmatter block")
	}
	cases := []struct {
		key  string
		want any
	}{
		{"type", "book"},
		{"title", "Sample"},
		{"pages", 250},
		{"published", true},
		{"categories", []string{"fiqh", "usul"}},
		{"tags", []string{"reading/2024", "arabic"}},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			got, found := m.Get(c.key)
			if !found {
				t.Fatalf("key %q missing", c.key)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("%s = %#v, want %#v", c.key, got, c.want)
			}
		})
	}
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	m, ok := Parse(sampleDoc)
	if !ok {
		t.Fatal("expected frontmatter block")
	}
	var keys []string
	for p := m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	want := []string{"type", "title", "pages", "rating", "published", "categories", "tags"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("key order = %v, want %v", keys, want)
	}
}

func TestParse_NoBlock(t *testing.T) {
	if _, ok := Parse("# Just a heading\n"); ok {
		t.Error("expected ok=false for document without frontmatter")
	}
	if _, ok := Parse("---\nunclosed: yes\n"); ok {
		t.Error("expected ok=false for unclosed block")
	}
}

func TestParse_MalformedValuesDegradeToString(t *testing.T) {
	doc := "---\nbroken: [a, b\nweird: {not yaml\n---\nbody"
	m, ok := Parse(doc)
	if !ok {
		t.Fatal("expected frontmatter block")
	}
	if v, _ := m.Get("broken"); v != "[a, b" {
		t.Errorf("broken = %#v, want raw string", v)
	}
	if v, _ := m.Get("weird"); v != "{not yaml" {
		t.Errorf("weird = %#v, want raw string", v)
	}
}

func TestParse_QuotedString(t *testing.T) {
	m, _ := Parse("---\ntitle: \"Quoted: with colon\"\n---\n")
	if v, _ := m.Get("title"); v != "Quoted: with colon" {
		t.Errorf("title = %#v", v)
	}
}

func TestBody(t *testing.T) {
	if got := Body(sampleDoc); got != "\nBody text here.\n" {
		t.Errorf("body = %q", got)
	}
	if got := Body("no block"); got != "no block" {
		t.Errorf("body without block = %q", got)
	}
}

func TestSetKey_ReplaceInPlace(t *testing.T) {
	out := SetKey(sampleDoc, "pages", 300)
	if !strings.Contains(out, "pages: 300") {
		t.Fatalf("missing replaced key:\n%s", out)
	}
	// Everything except the one touched line is byte-identical.
	wantLines := strings.Split(sampleDoc, "\n")
	gotLines := strings.Split(out, "\n")
	if len(wantLines) != len(gotLines) {
		t.Fatalf("line count changed: %d -> %d", len(wantLines), len(gotLines))
	}
	diff := 0
	for i := range wantLines {
		if wantLines[i] != gotLines[i] {
			diff++
			if gotLines[i] != "pages: 300" {
				t.Errorf("unexpected changed line %d: %q", i, gotLines[i])
			}
		}
	}
	if diff != 1 {
		t.Errorf("changed %d lines, want exactly 1", diff)
	}
}

func TestSetKey_ReplaceBlockList(t *testing.T) {
	out := SetKey(sampleDoc, "tags", []string{"x", "y"})
	if !strings.Contains(out, `tags: ["x", "y"]`) {
		t.Errorf("block list not replaced by inline form:\n%s", out)
	}
	if strings.Contains(out, "reading/2024") {
		t.Error("old list items survived replacement")
	}
	if !strings.Contains(out, "Body text here.") {
		t.Error("body lost")
	}
}

func TestSetKey_AppendMissingKey(t *testing.T) {
	out := SetKey(sampleDoc, "isbn", "978-0000")
	m, _ := Parse(out)
	if v, _ := m.Get("isbn"); v != "978-0000" {
		t.Errorf("isbn = %#v", v)
	}
	// Appended before the closing delimiter, after all existing keys.
	if m.Newest().Key != "isbn" {
		t.Errorf("isbn not last key, got %q", m.Newest().Key)
	}
}

func TestSetKey_SynthesizeBlock(t *testing.T) {
	out := SetKey("plain body\n", "status", "reading")
	if !strings.HasPrefix(out, "---\nstatus: reading\n---\n") {
		t.Errorf("block not synthesized:\n%s", out)
	}
	if !strings.HasSuffix(out, "plain body\n") {
		t.Errorf("original text altered:\n%s", out)
	}
}

func TestSetKey_LongListUsesBlockForm(t *testing.T) {
	items := []string{"one", "two", "three", "four", "five", "six"}
	out := SetKey(sampleDoc, "categories", items)
	if !strings.Contains(out, "categories:\n  - one\n") {
		t.Errorf("expected block form:\n%s", out)
	}
	m, _ := Parse(out)
	if v, _ := m.Get("categories"); !reflect.DeepEqual(v, items) {
		t.Errorf("round-trip = %#v", v)
	}
}

func TestSetKey_JSONItemsRoundTrip(t *testing.T) {
	entry := `{"id":"abc-123","category":"fiqh","dateAdded":"2024-01-02","tags":["a"]}`
	out := SetKey(sampleDoc, "benefits", []string{entry})
	m, _ := Parse(out)
	v, _ := m.Get("benefits")
	got, ok := v.([]string)
	if !ok || len(got) != 1 || got[0] != entry {
		t.Errorf("benefits round-trip = %#v", v)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	pairs := []Pair{
		{"type", "video"},
		{"title", "Intro"},
		{"duration", "01:02:03"},
		{"tags", []string{"a/b"}},
	}
	doc := Render(pairs, "The body.\n")
	m, ok := Parse(doc)
	if !ok {
		t.Fatal("rendered document has no parseable block")
	}
	if v, _ := m.Get("duration"); v != "01:02:03" {
		t.Errorf("duration = %#v", v)
	}
	if Body(doc) != "\nThe body.\n" {
		t.Errorf("body = %q", Body(doc))
	}
}
