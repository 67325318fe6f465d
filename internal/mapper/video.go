package mapper

import (
	"github.com/WallySa7/alrawi/internal/frontmatter"
	"github.com/WallySa7/alrawi/internal/models"
)

// DecodeVideo builds a Video from a document's frontmatter. ok is false when
// the "type" discriminator does not name a video kind — the caller decides
// membership from that, never by probing kind-specific keys.
func DecodeVideo(path string, fm *frontmatter.Map, d Defaults) (*models.Video, bool) {
	typ := getString(fm, "type")
	if typ != models.TypeVideo && typ != models.TypeSeries {
		return nil, false
	}
	dur := getString(fm, "duration")
	return &models.Video{
		Path:            path,
		Title:           getString(fm, "title"),
		Presenter:       getStringDefault(fm, "presenter", d.Presenter),
		Duration:        dur,
		DurationSeconds: DurationSeconds(dur),
		URL:             getString(fm, "url"),
		VideoID:         getString(fm, "videoId"),
		Thumbnail:       getString(fm, "thumbnail"),
		Type:            typ,
		Status:          getStringDefault(fm, "status", d.VideoStatus),
		DateAdded:       getString(fm, "dateAdded"),
		Categories:      getStringList(fm, "categories"),
		Tags:            getStringList(fm, "tags"),
	}, true
}

// DecodePlaylist builds a Playlist; ok is false unless type == "playlist".
func DecodePlaylist(path string, fm *frontmatter.Map, d Defaults) (*models.Playlist, bool) {
	if getString(fm, "type") != models.TypePlaylist {
		return nil, false
	}
	dur := getString(fm, "duration")
	return &models.Playlist{
		Path:            path,
		Title:           getString(fm, "title"),
		Presenter:       getStringDefault(fm, "presenter", d.Presenter),
		Duration:        dur,
		DurationSeconds: DurationSeconds(dur),
		URL:             getString(fm, "url"),
		Thumbnail:       getString(fm, "thumbnail"),
		ItemCount:       getInt(fm, "itemCount"),
		Status:          getStringDefault(fm, "status", d.VideoStatus),
		DateAdded:       getString(fm, "dateAdded"),
		Categories:      getStringList(fm, "categories"),
		Tags:            getStringList(fm, "tags"),
	}, true
}

// EncodeVideo renders the frontmatter pairs and body for a video document.
// The caller must already have chosen the correct mapper for the record kind.
func EncodeVideo(v *models.Video) ([]frontmatter.Pair, string) {
	pairs := []frontmatter.Pair{
		{Key: "type", Value: v.Type},
		{Key: "title", Value: v.Title},
		{Key: "presenter", Value: v.Presenter},
		{Key: "duration", Value: v.Duration},
	}
	pairs = appendNonEmpty(pairs, "url", v.URL)
	pairs = appendNonEmpty(pairs, "videoId", v.VideoID)
	pairs = appendNonEmpty(pairs, "thumbnail", v.Thumbnail)
	pairs = append(pairs,
		frontmatter.Pair{Key: "status", Value: v.Status},
		frontmatter.Pair{Key: "dateAdded", Value: v.DateAdded},
		frontmatter.Pair{Key: "categories", Value: emptyList(v.Categories)},
		frontmatter.Pair{Key: "tags", Value: emptyList(v.Tags)},
	)
	return pairs, "# " + v.Title + "\n"
}

// EncodePlaylist renders the frontmatter pairs and body for a playlist.
func EncodePlaylist(p *models.Playlist) ([]frontmatter.Pair, string) {
	pairs := []frontmatter.Pair{
		{Key: "type", Value: models.TypePlaylist},
		{Key: "title", Value: p.Title},
		{Key: "presenter", Value: p.Presenter},
		{Key: "duration", Value: p.Duration},
		{Key: "itemCount", Value: p.ItemCount},
	}
	pairs = appendNonEmpty(pairs, "url", p.URL)
	pairs = appendNonEmpty(pairs, "thumbnail", p.Thumbnail)
	pairs = append(pairs,
		frontmatter.Pair{Key: "status", Value: p.Status},
		frontmatter.Pair{Key: "dateAdded", Value: p.DateAdded},
		frontmatter.Pair{Key: "categories", Value: emptyList(p.Categories)},
		frontmatter.Pair{Key: "tags", Value: emptyList(p.Tags)},
	)
	return pairs, "# " + p.Title + "\n"
}

func appendNonEmpty(pairs []frontmatter.Pair, key, value string) []frontmatter.Pair {
	if value == "" {
		return pairs
	}
	return append(pairs, frontmatter.Pair{Key: key, Value: value})
}

func emptyList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
