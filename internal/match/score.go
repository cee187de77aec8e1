// Package match finds video candidates for the tracks of a release.
package match

import (
	"sort"

	"github.com/cesargomez89/cratedigger/internal/constants"
	"github.com/cesargomez89/cratedigger/internal/textnorm"
)

// ScoreTitle rates how well a candidate title names a track: exact 10,
// candidate containing the track 8, track containing the candidate 5,
// otherwise twice the token overlap less one for single-word tracks.
func ScoreTitle(track, candidate string) int {
	t := textnorm.Joined(track)
	c := textnorm.Joined(candidate)
	if t == "" || c == "" {
		return 0
	}
	switch {
	case t == c:
		return constants.ScoreExact
	case textnorm.ContainsPhrase(candidate, track):
		return constants.ScoreCandidateContains
	case textnorm.ContainsPhrase(track, candidate):
		return constants.ScoreTrackContains
	}

	penalty := 0
	if len(textnorm.Tokens(track)) <= 1 {
		penalty = 1
	}
	return 2*textnorm.Overlap(track, candidate) - penalty
}

// Pair is a scored (track, candidate) combination. Track and Candidate are
// indexes into the caller's slices.
type Pair struct {
	Track     int
	Candidate int
	Score     int
}

// AssignGreedy picks pairs by descending score, using every track and every
// candidate at most once. Pairs below threshold are ignored. Ties keep input
// order.
func AssignGreedy(pairs []Pair, threshold int) []Pair {
	sorted := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Score >= threshold {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	usedTrack := make(map[int]bool)
	usedCandidate := make(map[int]bool)
	var out []Pair
	for _, p := range sorted {
		if usedTrack[p.Track] || usedCandidate[p.Candidate] {
			continue
		}
		usedTrack[p.Track] = true
		usedCandidate[p.Candidate] = true
		out = append(out, p)
	}
	return out
}

// BestTrack returns the index of the highest scoring title for candidate, or
// -1 when nothing reaches threshold. The first track wins ties.
func BestTrack(titles []string, candidate string, threshold int) (int, int) {
	best, bestScore := -1, 0
	for i, title := range titles {
		s := ScoreTitle(title, candidate)
		if s >= threshold && s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
