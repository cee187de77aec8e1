package domain

import (
	"strconv"
	"strings"
	"time"
)

type LabelStatus string

const (
	LabelStatusQueued     LabelStatus = "queued"
	LabelStatusProcessing LabelStatus = "processing"
	LabelStatusPaused     LabelStatus = "paused"
	LabelStatusComplete   LabelStatus = "complete"
	LabelStatusError      LabelStatus = "error"
)

type ReleaseStatus string

const (
	ReleaseStatusPending ReleaseStatus = "pending"
	ReleaseStatusFetched ReleaseStatus = "fetched"
	ReleaseStatusFailed  ReleaseStatus = "failed"
)

type QueueStatus string

const (
	QueueStatusPending QueueStatus = "pending"
	QueueStatusPlayed  QueueStatus = "played"
)

// MatchSource tags where a video candidate came from.
type MatchSource string

const (
	SourceCatalog         MatchSource = "catalog"
	SourceStorefront      MatchSource = "storefront"
	SourceSearch          MatchSource = "search"
	SourceManual          MatchSource = "manual"
	SourceReleaseVideo    MatchSource = "release_video"
	SourceReleaseFallback MatchSource = "release_fallback"
)

// Label is a catalog label followed by one owner. The crawl cursor
// (CurrentPage/TotalPages) only ever moves forward.
type Label struct {
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	LastError   *string     `json:"last_error,omitempty" db:"last_error"`
	OwnerID     string      `json:"owner_id" db:"owner_id"`
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	SourceURL   string      `json:"source_url" db:"source_url"`
	Status      LabelStatus `json:"status" db:"status"`
	CurrentPage int         `json:"current_page" db:"current_page"`
	TotalPages  int         `json:"total_pages" db:"total_pages"`
	RetryCount  int         `json:"retry_count" db:"retry_count"`
	Active      bool        `json:"active" db:"active"`
}

// Crawlable reports whether the background poller should pick this label.
func (l *Label) Crawlable() bool {
	return l.Active && (l.Status == LabelStatusQueued || l.Status == LabelStatusProcessing)
}

// HasMorePages reports whether the page cursor still points at an unfetched page.
func (l *Label) HasMorePages() bool {
	return l.CurrentPage <= l.TotalPages
}

// Release is one entry of a label's catalog listing.
type Release struct {
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	ProcessingError *string       `json:"processing_error,omitempty" db:"processing_error"`
	OwnerID         string        `json:"owner_id" db:"owner_id"`
	ID              string        `json:"id" db:"id"`
	LabelID         string        `json:"label_id" db:"label_id"`
	Title           string        `json:"title" db:"title"`
	Artist          string        `json:"artist" db:"artist"`
	CatalogNumber   string        `json:"catalog_number" db:"catalog_number"`
	ArtworkURL      string        `json:"artwork_url" db:"artwork_url"`
	Status          ReleaseStatus `json:"status" db:"status"`
	Genres          TagSet        `json:"genres" db:"genres"`
	Styles          TagSet        `json:"styles" db:"styles"`
	Contributors    TagSet        `json:"contributors" db:"contributors"`
	Year            int           `json:"year" db:"year"`
	ReleaseOrder    int           `json:"release_order" db:"release_order"`
	MatchConfidence float64       `json:"match_confidence" db:"match_confidence"`
	YoutubeMatched  bool          `json:"youtube_matched" db:"youtube_matched"`
}

// DetailsFetched reports whether the release detail has been processed.
func (r *Release) DetailsFetched() bool {
	return r.Status != ReleaseStatusPending
}

// ReleaseOrder gives a stable crawl order from the page a release was
// listed on and its position inside that page.
func ReleaseOrder(page, index, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page-1)*perPage + index
}

type Track struct {
	OwnerID   string `json:"owner_id" db:"owner_id"`
	ID        string `json:"id" db:"id"`
	ReleaseID string `json:"release_id" db:"release_id"`
	Position  string `json:"position" db:"position"`
	Title     string `json:"title" db:"title"`
	Duration  string `json:"duration" db:"duration"`
	Artist    string `json:"artist" db:"artist"`
	Index     int    `json:"index" db:"track_index"`
	Listened  bool   `json:"listened" db:"listened"`
	Saved     bool   `json:"saved" db:"saved"`
}

// TrackID derives the deterministic id of the idx-th track of a release so
// reprocessing the same listing yields the same track set.
func TrackID(releaseID string, idx int) string {
	return releaseID + "-" + strconv.Itoa(idx)
}

type VideoMatch struct {
	FetchedAt  time.Time   `json:"fetched_at" db:"fetched_at"`
	OwnerID    string      `json:"owner_id" db:"owner_id"`
	ID         string      `json:"id" db:"id"`
	TrackID    string      `json:"track_id" db:"track_id"`
	VideoID    string      `json:"video_id" db:"video_id"`
	Title      string      `json:"title" db:"title"`
	Channel    string      `json:"channel" db:"channel"`
	Source     MatchSource `json:"source" db:"source"`
	Score      int         `json:"score" db:"score"`
	Rank       int         `json:"rank" db:"match_rank"`
	Embeddable bool        `json:"embeddable" db:"embeddable"`
	Chosen     bool        `json:"chosen" db:"chosen"`
}

type QueueItem struct {
	AddedAt   time.Time   `json:"added_at" db:"added_at"`
	TrackID   *string     `json:"track_id,omitempty" db:"track_id"`
	ReleaseID *string     `json:"release_id,omitempty" db:"release_id"`
	LabelID   *string     `json:"label_id,omitempty" db:"label_id"`
	OwnerID   string      `json:"owner_id" db:"owner_id"`
	ID        string      `json:"id" db:"id"`
	VideoID   string      `json:"video_id" db:"video_id"`
	Title     string      `json:"title" db:"title"`
	Source    MatchSource `json:"source" db:"source"`
	Status    QueueStatus `json:"status" db:"status"`
	Priority  int         `json:"priority" db:"priority"`
}

// Candidate is a scored video proposal for one track, before persistence.
type Candidate struct {
	VideoID    string      `json:"video_id"`
	Title      string      `json:"title"`
	Channel    string      `json:"channel"`
	Source     MatchSource `json:"source"`
	Score      int         `json:"score"`
	Embeddable bool        `json:"embeddable"`
}

// DedupCandidates keeps the first occurrence of every video id.
func DedupCandidates(in []Candidate) []Candidate {
	seen := make(map[string]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		id := strings.TrimSpace(c.VideoID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out
}
