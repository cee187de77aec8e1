package domain

import "strings"

// ReleaseSummary is one row of a label's release listing.
type ReleaseSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	CatalogNumber string `json:"catalog_number"`
	ArtworkURL    string `json:"artwork_url"`
	Year          int    `json:"year"`
}

type LabelPage struct {
	Releases []ReleaseSummary `json:"releases"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// EmbeddedVideo is a video link the catalog attaches to a release.
type EmbeddedVideo struct {
	URL         string `json:"url"`
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Embeddable  bool   `json:"embeddable"`
}

type TrackListing struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Artist   string `json:"artist"`
}

type ReleaseDetail struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Artist        string          `json:"artist"`
	LabelName     string          `json:"label_name"`
	CatalogNumber string          `json:"catalog_number"`
	ArtworkURL    string          `json:"artwork_url"`
	Tracks        []TrackListing  `json:"tracks"`
	Videos        []EmbeddedVideo `json:"videos"`
	Genres        TagSet          `json:"genres"`
	Styles        TagSet          `json:"styles"`
	Contributors  TagSet          `json:"contributors"`
	Year          int             `json:"year"`
}

// BuildTracks turns a track listing into persisted tracks. Entries with blank
// titles are skipped; ids depend only on position in the filtered list.
func (d *ReleaseDetail) BuildTracks(ownerID string) []Track {
	var tracks []Track
	for _, t := range d.Tracks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		idx := len(tracks)
		artist := strings.TrimSpace(t.Artist)
		if artist == "" {
			artist = d.Artist
		}
		tracks = append(tracks, Track{
			OwnerID:   ownerID,
			ID:        TrackID(d.ID, idx),
			ReleaseID: d.ID,
			Position:  t.Position,
			Title:     title,
			Duration:  t.Duration,
			Artist:    artist,
			Index:     idx,
		})
	}
	return tracks
}

// Identity is the catalog account behind the configured credential.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type WantlistItem struct {
	ReleaseID string `json:"release_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Year      int    `json:"year"`
}

type WantlistPage struct {
	Items []WantlistItem `json:"items"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}
