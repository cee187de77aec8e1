package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelStatus_Transitions(t *testing.T) {
	tests := []struct {
		from LabelStatus
		to   LabelStatus
		ok   bool
	}{
		{LabelStatusQueued, LabelStatusProcessing, true},
		{LabelStatusProcessing, LabelStatusComplete, true},
		{LabelStatusProcessing, LabelStatusError, true},
		{LabelStatusError, LabelStatusQueued, true},
		{LabelStatusPaused, LabelStatusQueued, true},
		{LabelStatusPaused, LabelStatusProcessing, false},
		{LabelStatusComplete, LabelStatusError, false},
		{LabelStatusComplete, LabelStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.Transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestLabelStatus_Valid(t *testing.T) {
	for _, s := range []LabelStatus{LabelStatusQueued, LabelStatusProcessing, LabelStatusPaused, LabelStatusComplete, LabelStatusError} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LabelStatus("running").Valid())
}

func TestReleaseStatus_Transitions(t *testing.T) {
	assert.True(t, ReleaseStatusPending.CanTransition(ReleaseStatusFetched))
	assert.True(t, ReleaseStatusPending.CanTransition(ReleaseStatusFailed))
	assert.True(t, ReleaseStatusFetched.CanTransition(ReleaseStatusFetched))
	assert.False(t, ReleaseStatusFailed.CanTransition(ReleaseStatusFetched))
}

func TestQueueStatus_Transitions(t *testing.T) {
	next, err := QueueStatusPending.Transition(QueueStatusPlayed)
	require.NoError(t, err)
	assert.Equal(t, QueueStatusPlayed, next)

	_, err = QueueStatusPlayed.Transition(QueueStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMatchSource_Priority(t *testing.T) {
	assert.Greater(t, SourceManual.Priority(), SourceCatalog.Priority())
	assert.Greater(t, SourceCatalog.Priority(), SourceSearch.Priority())
	assert.Greater(t, SourceReleaseVideo.Priority(), SourceReleaseFallback.Priority())
	assert.Zero(t, MatchSource("unknown").Priority())
}

func TestLabel_Crawlable(t *testing.T) {
	l := Label{Active: true, Status: LabelStatusQueued}
	assert.True(t, l.Crawlable())

	l.Status = LabelStatusError
	assert.False(t, l.Crawlable())

	l.Status = LabelStatusProcessing
	l.Active = false
	assert.False(t, l.Crawlable())
}

func TestReleaseOrder(t *testing.T) {
	assert.Equal(t, 0, ReleaseOrder(1, 0, 50))
	assert.Equal(t, 53, ReleaseOrder(2, 3, 50))
	assert.Less(t, ReleaseOrder(1, 49, 50), ReleaseOrder(2, 0, 50))
}

func TestReleaseDetail_BuildTracks(t *testing.T) {
	detail := ReleaseDetail{
		ID:     "r1",
		Artist: "Various",
		Tracks: []TrackListing{
			{Position: "A1", Title: "Intro"},
			{Position: "A2", Title: "   "},
			{Position: "B1", Title: "Closer", Artist: "Guest"},
		},
	}

	tracks := detail.BuildTracks("owner")
	require.Len(t, tracks, 2)
	assert.Equal(t, "r1-0", tracks[0].ID)
	assert.Equal(t, "Various", tracks[0].Artist)
	assert.Equal(t, "r1-1", tracks[1].ID)
	assert.Equal(t, "Guest", tracks[1].Artist)
	assert.Equal(t, "B1", tracks[1].Position)

	again := detail.BuildTracks("owner")
	assert.Equal(t, tracks, again)
}

func TestDedupCandidates(t *testing.T) {
	in := []Candidate{
		{VideoID: "a", Source: SourceCatalog},
		{VideoID: "b", Source: SourceStorefront},
		{VideoID: "a", Source: SourceSearch},
		{VideoID: ""},
	}

	out := DedupCandidates(in)
	require.Len(t, out, 2)
	assert.Equal(t, SourceCatalog, out[0].Source)
	assert.Equal(t, "b", out[1].VideoID)
}

func TestTagSet(t *testing.T) {
	s := NewTagSet("House", "  ", "house", "Techno")
	assert.Equal(t, TagSet{"House", "Techno"}, s)
	assert.True(t, s.Contains("TECHNO"))

	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, `["House","Techno"]`, v)

	var scanned TagSet
	require.NoError(t, scanned.Scan([]byte(`["Dub","dub","Jungle"]`)))
	assert.Equal(t, TagSet{"Dub", "Jungle"}, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	var empty TagSet
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, scanned.Scan(42))
}
