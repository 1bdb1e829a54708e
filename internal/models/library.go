package models

// Track is a single track within an album
type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist,omitempty"`
	DiscNumber  int     `json:"discNumber"`
	TrackNumber int     `json:"trackNumber"`
	Duration    float64 `json:"duration"`
	MediaFileID string  `json:"mediaFileId,omitempty"`
	ArtworkURL  string  `json:"artworkUrl,omitempty"`
}

// Album is an album together with its tracks
type Album struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	ArtworkURL string  `json:"artworkUrl,omitempty"`
	Tracks     []Track `json:"tracks"`
}

// Chapter is a single chapter within an audiobook
type Chapter struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ChapterNumber int     `json:"chapterNumber"`
	Duration      float64 `json:"duration"`
	MediaFileID   string  `json:"mediaFileId,omitempty"`
}

// Audiobook is an audiobook together with its chapters
type Audiobook struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author,omitempty"`
	ArtworkURL string    `json:"artworkUrl,omitempty"`
	Chapters   []Chapter `json:"chapters"`
}

// Show is a TV show
type Show struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// Episode is a single episode of a show
type Episode struct {
	ID            string  `json:"id"`
	ShowID        string  `json:"showId"`
	Title         string  `json:"title"`
	SeasonNumber  int     `json:"seasonNumber"`
	EpisodeNumber int     `json:"episodeNumber"`
	Duration      float64 `json:"duration"`
	MediaFileID   string  `json:"mediaFileId,omitempty"`
}

// Movie is a standalone movie
type Movie struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	MediaFileID string  `json:"mediaFileId,omitempty"`
	ArtworkURL  string  `json:"artworkUrl,omitempty"`
}
