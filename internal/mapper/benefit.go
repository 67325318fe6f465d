package mapper

import (
	"encoding/json"
	"strings"

	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/markers"
	"github.com/WallySa7/alrawi/internal/models"
)

// BenefitsHeading is the body section benefit blocks live under.
const BenefitsHeading = "## Benefits"

const benefitsKey = "benefits"

// benefitEntry is the frontmatter-side representation of a benefit. It
// deliberately excludes title, text, pages, and volume — those live solely
// in the marked body block.
type benefitEntry struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	DateAdded string   `json:"dateAdded"`
	Tags      []string `json:"tags,omitempty"`
}

// UpsertBenefit writes both representations of a benefit into doc: its entry
// in the frontmatter "benefits" array and its marked block in the body. Both
// updates happen on the in-memory text before the caller performs the single
// storage write, so the two representations can never diverge on disk.
func UpsertBenefit(doc string, b *models.Benefit) string {
	doc = markers.Upsert(doc, b.ID, renderBenefitBlock(b), BenefitsHeading)

	entry := benefitEntry{ID: b.ID, Category: b.Category, DateAdded: b.DateAdded, Tags: b.Tags}
	data, _ := json.Marshal(entry)

	entries := benefitEntries(doc)
	replaced := false
	for i, raw := range entries {
		if entryID(raw) == b.ID {
			entries[i] = string(data)
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, string(data))
	}
	return frontmatter.SetKey(doc, benefitsKey, entries)
}

// RemoveBenefit deletes both representations of a benefit. ok is false when
// neither held the id; a partially present benefit (one representation only)
// is still cleaned from wherever it was found.
func RemoveBenefit(doc, id string) (string, bool) {
	out, removedBlock := markers.Remove(doc, id)

	entries := benefitEntries(out)
	kept := entries[:0]
	removedEntry := false
	for _, raw := range entries {
		if entryID(raw) == id {
			removedEntry = true
			continue
		}
		kept = append(kept, raw)
	}
	if removedEntry {
		out = frontmatter.SetKey(out, benefitsKey, append([]string{}, kept...))
	}
	return out, removedBlock || removedEntry
}

// DecodeBenefits reconstructs every benefit of a source document. The
// frontmatter entry is authoritative for category, dateAdded, and tags; the
// body block supplies title, text, pages, and volume. An entry whose block
// is missing decodes with empty text rather than being dropped, so the
// inconsistency stays visible to callers.
func DecodeBenefits(path, doc, sourceType, sourceTitle string) []*models.Benefit {
	var out []*models.Benefit
	for _, raw := range benefitEntries(doc) {
		var entry benefitEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.ID == "" {
			continue
		}
		b := &models.Benefit{
			ID:          entry.ID,
			Category:    entry.Category,
			DateAdded:   entry.DateAdded,
			Tags:        emptyList(entry.Tags),
			SourceType:  sourceType,
			SourcePath:  path,
			SourceTitle: sourceTitle,
		}
		if inner, ok := markers.Extract(doc, entry.ID); ok {
			parseBenefitBlock(b, inner)
		}
		out = append(out, b)
	}
	return out
}

// renderBenefitBlock serializes a benefit body block in fixed field order:
// title line, text, pages, volume, tags, date added.
func renderBenefitBlock(b *models.Benefit) string {
	header := b.Title
	if header == "" {
		header = b.Category
	}
	var sb strings.Builder
	sb.WriteString("### " + header + "\n\n")
	sb.WriteString(strings.TrimRight(b.Text, "\n") + "\n")
	if b.Pages != "" {
		sb.WriteString("\nPages: " + b.Pages)
	}
	if b.Volume != "" {
		sb.WriteString("\nVolume: " + b.Volume)
	}
	if len(b.Tags) > 0 {
		sb.WriteString("\nTags: " + strings.Join(b.Tags, ", "))
	}
	sb.WriteString("\nDate added: " + b.DateAdded)
	return markers.Wrap(b.ID, sb.String())
}

// parseBenefitBlock fills title/text/pages/volume from the block inner text.
func parseBenefitBlock(b *models.Benefit, inner string) {
	var textLines []string
	for _, line := range strings.Split(inner, "\n") {
		switch {
		case strings.HasPrefix(line, "### "):
			header := strings.TrimSpace(strings.TrimPrefix(line, "### "))
			if header != b.Category {
				b.Title = header
			}
		case strings.HasPrefix(line, "Pages: "):
			b.Pages = strings.TrimSpace(strings.TrimPrefix(line, "Pages: "))
		case strings.HasPrefix(line, "Volume: "):
			b.Volume = strings.TrimSpace(strings.TrimPrefix(line, "Volume: "))
		case strings.HasPrefix(line, "Tags: "):
			// Display duplicate; the frontmatter entry is authoritative.
		case strings.HasPrefix(line, "Date added: "):
			// Same: display duplicate of the frontmatter dateAdded.
		default:
			textLines = append(textLines, line)
		}
	}
	b.Text = strings.Trim(strings.Join(textLines, "\n"), "\n")
}

// benefitEntries returns the raw JSON entry strings of the benefits array,
// tolerating both list serialization forms.
func benefitEntries(doc string) []string {
	fm, ok := frontmatter.Parse(doc)
	if !ok {
		return nil
	}
	v, ok := fm.Get(benefitsKey)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			switch e := item.(type) {
			case string:
				out = append(out, e)
			default:
				if data, err := json.Marshal(e); err == nil {
					out = append(out, string(data))
				}
			}
		}
		return out
	}
	return nil
}

// entryID peeks the id of a raw JSON entry without a full decode round.
func entryID(raw string) string {
	var entry benefitEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return ""
	}
	return entry.ID
}
