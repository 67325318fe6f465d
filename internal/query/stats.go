package query

import "github.com/WallySa7/alrawi/internal/models"

// Stats is an aggregated summary over all record collections.
type Stats struct {
	Videos            int            `json:"videos"`
	Playlists         int            `json:"playlists"`
	Books             int            `json:"books"`
	Benefits          int            `json:"benefits"`
	VideosByStatus    map[string]int `json:"videosByStatus"`
	BooksByStatus     map[string]int `json:"booksByStatus"`
	TotalWatchSeconds int            `json:"totalWatchSeconds"`
	TotalPagesRead    int            `json:"totalPagesRead"`
	AverageRating     float64        `json:"averageRating"`
}

// ComputeStats aggregates counts, watch time, reading progress, and the
// average rating of rated books.
func ComputeStats(videos []*models.Video, playlists []*models.Playlist, books []*models.Book, benefits []*models.Benefit) Stats {
	s := Stats{
		Videos:         len(videos),
		Playlists:      len(playlists),
		Books:          len(books),
		Benefits:       len(benefits),
		VideosByStatus: map[string]int{},
		BooksByStatus:  map[string]int{},
	}
	for _, v := range videos {
		s.VideosByStatus[v.Status]++
		s.TotalWatchSeconds += v.DurationSeconds
	}
	for _, p := range playlists {
		s.VideosByStatus[p.Status]++
		s.TotalWatchSeconds += p.DurationSeconds
	}
	rated := 0
	ratingSum := 0
	for _, b := range books {
		s.BooksByStatus[b.Status]++
		s.TotalPagesRead += b.PagesRead
		if b.Rating > 0 {
			rated++
			ratingSum += b.Rating
		}
	}
	if rated > 0 {
		s.AverageRating = float64(ratingSum) / float64(rated)
	}
	return s
}
