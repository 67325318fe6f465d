// Package models defines the domain record types for Alrawi.
package models

import "time"

// Document type discriminator values stored in the "type" frontmatter key.
const (
	TypeVideo    = "video"    // standalone video
	TypeSeries   = "series"   // one episode of a series
	TypePlaylist = "playlist" // aggregate of videos
	TypeBook     = "book"
)

// Benefit source kinds.
const (
	SourceVideo = "video"
	SourceBook  = "book"
)

// Recognized book statuses that drive derived-date logic. Other statuses are
// allowed (the list is configurable) but carry no side effects.
const (
	StatusReading   = "reading"
	StatusCompleted = "completed"
)

// DateFormat is the layout for all frontmatter dates.
const DateFormat = "2006-01-02"

// Video represents a watched (or unwatched) video lecture document.
// Path is both primary key and storage location.
type Video struct {
	Path            string   `json:"path"`
	Title           string   `json:"title"`
	Presenter       string   `json:"presenter"`
	Duration        string   `json:"duration"` // HH:MM:SS
	DurationSeconds int      `json:"durationSeconds"`
	URL             string   `json:"url,omitempty"`
	VideoID         string   `json:"videoId,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	Type            string   `json:"type"` // TypeVideo or TypeSeries
	Status          string   `json:"status"`
	DateAdded       string   `json:"dateAdded"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
}

// Playlist represents an aggregate video document. A document is either a
// Video or a Playlist, decided by its "type" frontmatter value.
type Playlist struct {
	Path            string   `json:"path"`
	Title           string   `json:"title"`
	Presenter       string   `json:"presenter"`
	Duration        string   `json:"duration"`
	DurationSeconds int      `json:"durationSeconds"`
	URL             string   `json:"url,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	ItemCount       int      `json:"itemCount"`
	Status          string   `json:"status"`
	DateAdded       string   `json:"dateAdded"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
}

// Book represents a read (or unread) book document.
//
// Invariant: 0 <= PagesRead <= Pages. When PagesRead == Pages the status is
// "completed" and CompletionDate is set; dropping below Pages afterwards
// reverts the status to "reading". The coupling lives in mapper.ReconcileBook.
type Book struct {
	Path           string   `json:"path"`
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	ISBN           string   `json:"isbn,omitempty"`
	Pages          int      `json:"pages"`
	PagesRead      int      `json:"pagesRead"`
	Publisher      string   `json:"publisher,omitempty"`
	PublishYear    string   `json:"publishYear,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	CompletionDate string   `json:"completionDate,omitempty"`
	Language       string   `json:"language"`
	Rating         int      `json:"rating"` // 0–5
	Status         string   `json:"status"`
	DateAdded      string   `json:"dateAdded"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
	Notes          string   `json:"notes,omitempty"`
	CoverURL       string   `json:"coverUrl,omitempty"`
}

// Benefit is a note/excerpt extracted from a source document. It is the only
// record with a synthetic key: many benefits can live inside one document.
// SourcePath is a weak reference; the benefit's lifecycle is bound to the
// source document's frontmatter "benefits" array and its marked body block.
type Benefit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Text        string   `json:"text"`
	Category    string   `json:"category"`
	SourceType  string   `json:"sourceType"` // SourceVideo or SourceBook
	SourcePath  string   `json:"sourcePath"`
	SourceTitle string   `json:"sourceTitle"` // denormalized display cache
	DateAdded   string   `json:"dateAdded"`
	Tags        []string `json:"tags"`
	Pages       string   `json:"pages,omitempty"`  // book only
	Volume      string   `json:"volume,omitempty"` // book only
}

// DocumentInfo is lightweight per-file metadata returned by storage listings.
type DocumentInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
