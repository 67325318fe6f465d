package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/WallySa7/alrawi/internal/checksum"
	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/models"
	"github.com/WallySa7/alrawi/internal/storage"
)

// IndexDocument extracts record fields from a document and upserts them.
// A document without a recognized type is removed from the index instead:
// it may have been a record before the edit.
func (db *DB) IndexDocument(path, text string) error {
	row, body, ok := extractRecord(path, text)
	if !ok {
		return db.DeleteRecord(path)
	}
	return db.UpsertRecord(row, body)
}

// DeleteDocument removes a document from the index.
func (db *DB) DeleteDocument(path string) error {
	return db.DeleteRecord(path)
}

// Sync walks the vault folders and brings the index up to date:
//   - new/changed documents are decoded and upserted
//   - documents removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, folders []string, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	for _, folder := range folders {
		metas, err := store.List(folder)
		if err != nil {
			return fmt.Errorf("index: list %s: %w", folder, err)
		}
		for _, m := range metas {
			disk[m.Path] = struct{}{}

			if checksums[m.Path] == m.Checksum {
				continue
			}

			data, err := store.Read(m.Path)
			if err != nil {
				logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				continue
			}
			if err := db.IndexDocument(m.Path, string(data)); err != nil {
				logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: indexed", slog.String("path", m.Path))
			}
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteRecord(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// extractRecord pulls the indexed fields out of a record document. ok is
// false when the document carries no recognized type.
func extractRecord(path, text string) (RecordRow, string, bool) {
	fm, parsed := frontmatter.Parse(text)
	if !parsed {
		return RecordRow{}, "", false
	}
	kind := stringKey(fm, "type")
	switch kind {
	case models.TypeVideo, models.TypeSeries, models.TypePlaylist, models.TypeBook:
	default:
		return RecordRow{}, "", false
	}

	creator := stringKey(fm, "presenter")
	if kind == models.TypeBook {
		creator = stringKey(fm, "author")
	}
	row := RecordRow{
		Path:       path,
		Kind:       kind,
		Title:      stringKey(fm, "title"),
		Creator:    creator,
		Status:     stringKey(fm, "status"),
		Tags:       listKey(fm, "tags"),
		Categories: listKey(fm, "categories"),
		Checksum:   checksum.Sum([]byte(text)),
		UpdatedAt:  time.Now().UTC(),
	}
	return row, frontmatter.Body(text), true
}

func stringKey(fm *frontmatter.Map, key string) string {
	v, _ := fm.Get(key)
	s, _ := v.(string)
	return s
}

func listKey(fm *frontmatter.Map, key string) []string {
	v, ok := fm.Get(key)
	if !ok {
		return nil
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
	}
	return nil
}
