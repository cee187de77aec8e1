package video

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/textnorm"
)

var longFormPhrases = []string{
	"full album",
	"full ep",
	"full lp",
	"album stream",
	"full stream",
	"full mix",
	"continuous mix",
	"dj mix",
	"megamix",
	"full length",
}

// LooksLongForm reports whether a title suggests a whole release rather
// than a single track.
func LooksLongForm(title string) bool {
	for _, phrase := range longFormPhrases {
		if textnorm.ContainsPhrase(title, phrase) {
			return true
		}
	}
	return false
}

// ScoreMatch is the token overlap between the query and a candidate title,
// minus a penalty when the candidate looks like a long-form video.
func ScoreMatch(query, title string) int {
	score := textnorm.Overlap(query, title)
	if LooksLongForm(title) {
		score -= constants.LongFormPenalty
	}
	return score
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID returns the 11-character video id from the common
// YouTube URL shapes, or "" when raw is not a YouTube video link.
func ExtractVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case segments[0] == "watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "v" || segments[0] == "shorts" || segments[0] == "live"):
			id = segments[1]
		}
	}

	if videoIDPattern.MatchString(id) {
		return id
	}
	return ""
}
