package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/cratedigger/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func newLabel(id string) *domain.Label {
	return &domain.Label{
		ID:          id,
		Name:        "Label " + id,
		Active:      true,
		Status:      domain.LabelStatusQueued,
		CurrentPage: 1,
		TotalPages:  1,
	}
}

func TestLabels_CRUDAndScoping(t *testing.T) {
	db := setupTestDB(t)
	alice := db.Scope("alice")
	bob := db.Scope("bob")

	require.NoError(t, alice.CreateLabel(newLabel("1")))
	require.NoError(t, bob.CreateLabel(newLabel("1")))

	err := alice.CreateLabel(newLabel("1"))
	assert.True(t, errors.Is(err, ErrConflict))

	got, err := alice.GetLabel("1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, domain.LabelStatusQueued, got.Status)
	assert.True(t, got.Active)

	missing, err := alice.GetLabel("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	labels, err := bob.ListLabels()
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "bob", labels[0].OwnerID)
}

func TestLabels_PageCursorNeverDecreases(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	require.NoError(t, s.CreateLabel(newLabel("1")))

	l, err := s.GetLabel("1")
	require.NoError(t, err)
	l.CurrentPage = 4
	l.TotalPages = 5
	require.NoError(t, s.UpdateLabel(l))

	l.CurrentPage = 2
	l.LastError = strPtr("boom")
	l.Status = domain.LabelStatusError
	require.NoError(t, s.UpdateLabel(l))

	got, err := s.GetLabel("1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentPage)
	assert.Equal(t, domain.LabelStatusError, got.Status)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "boom", *got.LastError)
}

func TestLabels_SaveCrawlStateKeepsActiveFlag(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	require.NoError(t, s.CreateLabel(&domain.Label{ID: "1", Name: "Deep", Active: true, Status: domain.LabelStatusQueued, CurrentPage: 1}))

	stale, err := s.GetLabel("1")
	require.NoError(t, err)

	paused := *stale
	paused.Active = false
	paused.Status = domain.LabelStatusPaused
	require.NoError(t, s.UpdateLabel(&paused))

	stale.Name = "Renamed"
	stale.CurrentPage = 3
	stale.TotalPages = 7
	stale.Status = domain.LabelStatusPaused
	require.NoError(t, s.SaveCrawlState(stale))

	got, err := s.GetLabel("1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "Deep", got.Name)
	assert.Equal(t, 3, got.CurrentPage)
	assert.Equal(t, 7, got.TotalPages)

	err = s.SaveCrawlState(&domain.Label{OwnerID: "alice", ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLabels_Crawlable(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")

	queued := newLabel("q")
	paused := newLabel("p")
	paused.Active = false
	paused.Status = domain.LabelStatusPaused
	errored := newLabel("e")
	errored.Status = domain.LabelStatusError
	errored.LastError = strPtr("x")

	for _, l := range []*domain.Label{queued, paused, errored} {
		require.NoError(t, s.CreateLabel(l))
	}
	require.NoError(t, db.Scope("bob").CreateLabel(newLabel("b")))

	crawlable, err := db.ListCrawlableLabels(10)
	require.NoError(t, err)
	ids := []string{}
	for _, l := range crawlable {
		ids = append(ids, l.OwnerID+"/"+l.ID)
	}
	assert.ElementsMatch(t, []string{"alice/q", "bob/b"}, ids)

	failed, err := db.ListErroredLabels()
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "e", failed[0].ID)
}

func seedRelease(t *testing.T, s *Scope, labelID, id string, order int) {
	t.Helper()
	n, err := s.InsertReleases([]*domain.Release{{ID: id, LabelID: labelID, Title: "Release " + id, ReleaseOrder: order}})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestReleases_InsertIgnoresConflictsAndOrders(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	require.NoError(t, s.CreateLabel(newLabel("1")))

	seedRelease(t, s, "1", "r2", 1)
	seedRelease(t, s, "1", "r1", 0)

	n, err := s.InsertReleases([]*domain.Release{
		{ID: "r1", LabelID: "1", Title: "changed"},
		{ID: "r3", LabelID: "1", Title: "Release r3", ReleaseOrder: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r1, err := s.GetRelease("r1")
	require.NoError(t, err)
	assert.Equal(t, "Release r1", r1.Title)
	assert.Equal(t, domain.ReleaseStatusPending, r1.Status)

	next, err := s.NextPendingRelease("1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "r1", next.ID)

	next.Status = domain.ReleaseStatusFetched
	next.Genres = domain.NewTagSet("Electronic")
	next.MatchConfidence = 0.5
	require.NoError(t, s.UpdateRelease(next))

	next, err = s.NextPendingRelease("1")
	require.NoError(t, err)
	assert.Equal(t, "r2", next.ID)

	r1, err = s.GetRelease("r1")
	require.NoError(t, err)
	assert.Equal(t, domain.TagSet{"Electronic"}, r1.Genres)
	assert.InDelta(t, 0.5, r1.MatchConfidence, 0.0001)

	pending, err := s.CountReleases("1", domain.ReleaseStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestTracks_ReplaceIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	ctx := context.Background()

	detail := domain.ReleaseDetail{ID: "r1", Tracks: []domain.TrackListing{{Title: "One"}, {Title: ""}, {Title: "Two"}}}
	require.NoError(t, s.ReplaceTracks(ctx, "r1", detail.BuildTracks("alice")))
	require.NoError(t, s.SetTrackFlags("r1-0", true, true))

	_, err := s.ReplaceMatches(ctx, "r1-0", []domain.Candidate{{VideoID: "v1", Source: domain.SourceCatalog}})
	require.NoError(t, err)

	require.NoError(t, s.ReplaceTracks(ctx, "r1", detail.BuildTracks("alice")))

	tracks, err := s.ListTracks("r1")
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "One", tracks[0].Title)
	assert.True(t, tracks[0].Listened)
	assert.True(t, tracks[0].Saved)

	matches, err := s.ListMatches("r1-0")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMatches_ReplaceAndChoose(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	ctx := context.Background()

	matches, err := s.ReplaceMatches(ctx, "t1", []domain.Candidate{
		{VideoID: "a", Source: domain.SourceCatalog, Score: 10},
		{VideoID: "b", Source: domain.SourceSearch, Score: 4},
		{VideoID: "a", Source: domain.SourceSearch, Score: 1},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Chosen)
	assert.False(t, matches[1].Chosen)

	chosen, err := s.GetChosenMatch("t1")
	require.NoError(t, err)
	assert.Equal(t, "a", chosen.VideoID)

	require.NoError(t, s.ChooseMatch(ctx, "t1", matches[1].ID))

	listed, err := s.ListMatches("t1")
	require.NoError(t, err)
	chosenCount := 0
	for _, m := range listed {
		if m.Chosen {
			chosenCount++
			assert.Equal(t, "b", m.VideoID)
		}
	}
	assert.Equal(t, 1, chosenCount)

	err = s.ChooseMatch(ctx, "t1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Replacing again resets the chosen row to the new top candidate
	_, err = s.ReplaceMatches(ctx, "t1", []domain.Candidate{{VideoID: "c", Source: domain.SourceSearch}})
	require.NoError(t, err)
	chosen, err = s.GetChosenMatch("t1")
	require.NoError(t, err)
	assert.Equal(t, "c", chosen.VideoID)
}

func TestQueue_PendingUniqueness(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	ctx := context.Background()

	first, inserted, err := s.EnqueueItem(&domain.QueueItem{TrackID: strPtr("t1"), ReleaseID: strPtr("r1"), VideoID: "v1", Source: domain.SourceSearch})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, domain.SourceSearch.Priority(), first.Priority)

	dup, inserted, err := s.EnqueueItem(&domain.QueueItem{TrackID: strPtr("t1"), ReleaseID: strPtr("r1"), VideoID: "v1", Source: domain.SourceManual})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, dup.ID)

	_, inserted, err = s.EnqueueItem(&domain.QueueItem{TrackID: strPtr("t1"), VideoID: "v2", Source: domain.SourceManual})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Release-level items: one pending per release
	_, inserted, err = s.EnqueueItem(&domain.QueueItem{ReleaseID: strPtr("r1"), VideoID: "full", Source: domain.SourceReleaseFallback})
	require.NoError(t, err)
	assert.True(t, inserted)
	_, inserted, err = s.EnqueueItem(&domain.QueueItem{ReleaseID: strPtr("r1"), VideoID: "other", Source: domain.SourceReleaseFallback})
	require.NoError(t, err)
	assert.False(t, inserted)

	pending, err := s.ListQueue(domain.QueueStatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, domain.SourceManual, pending[0].Source)
	assert.Equal(t, domain.SourceReleaseFallback, pending[2].Source)

	played, err := s.MarkPlayed(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusPlayed, played.Status)

	_, err = s.MarkPlayed(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Once played, the same pair may be queued again
	_, inserted, err = s.EnqueueItem(&domain.QueueItem{TrackID: strPtr("t1"), VideoID: "v1", Source: domain.SourceSearch})
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestDeleteLabel_Cascades(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")
	ctx := context.Background()

	require.NoError(t, s.CreateLabel(newLabel("1")))
	seedRelease(t, s, "1", "r1", 0)
	require.NoError(t, s.ReplaceTracks(ctx, "r1", []domain.Track{{ID: "r1-0", Title: "One"}}))
	_, err := s.ReplaceMatches(ctx, "r1-0", []domain.Candidate{{VideoID: "v", Source: domain.SourceSearch}})
	require.NoError(t, err)
	_, _, err = s.EnqueueItem(&domain.QueueItem{TrackID: strPtr("r1-0"), ReleaseID: strPtr("r1"), LabelID: strPtr("1"), VideoID: "v", Source: domain.SourceSearch})
	require.NoError(t, err)
	_, _, err = s.EnqueueItem(&domain.QueueItem{ReleaseID: strPtr("r1"), VideoID: "full", Source: domain.SourceReleaseFallback})
	require.NoError(t, err)

	require.NoError(t, s.DeleteLabel(ctx, "1"))

	for table, want := range map[string]int{"labels": 0, "releases": 0, "tracks": 0, "video_matches": 0, "queue_items": 0} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
		assert.Equal(t, want, n, table)
	}

	assert.ErrorIs(t, s.DeleteLabel(ctx, "1"), ErrNotFound)
}

func TestRunInTx_RollsBack(t *testing.T) {
	db := setupTestDB(t)
	s := db.Scope("alice")

	sentinel := errors.New("stop")
	err := s.RunInTx(context.Background(), func(tx *Scope) error {
		require.NoError(t, tx.CreateLabel(newLabel("1")))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	got, err := s.GetLabel("1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache(t *testing.T) {
	db := setupTestDB(t)

	data, err := db.GetCache("k")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, db.SetCache("k", []byte("v1"), time.Hour))
	require.NoError(t, db.SetCache("k", []byte("v2"), time.Hour))
	data, err = db.GetCache("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, db.SetCache("old", []byte("x"), -time.Second))
	data, err = db.GetCache("old")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data, "non-positive ttl never expires")

	require.NoError(t, db.SetCache("short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	data, err = db.GetCache("short")
	require.NoError(t, err)
	assert.Nil(t, data)
}
